package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gurre/cloud-api-samples/apierr"
	"github.com/gurre/cloud-api-samples/creds"
	"github.com/gurre/cloud-api-samples/imaging"
	"github.com/gurre/cloud-api-samples/input"
	"github.com/gurre/cloud-api-samples/mail"
	"github.com/gurre/cloud-api-samples/pipeline"
	"github.com/gurre/cloud-api-samples/preflight"
	"github.com/gurre/cloud-api-samples/sink"
	"github.com/gurre/cloud-api-samples/speech"
	"github.com/gurre/cloud-api-samples/textanalysis"
	"github.com/gurre/cloud-api-samples/translation"
)

// Sample inputs used when a command gets no arguments.
const (
	defaultPollyText  = "こんにちは！私はAmazon Pollyです。日本語を自然な音声で読み上げることができます。"
	defaultDetectText = "回答はインターネットでも行うことができます。ぜひご活用ください。"
)

func newAWSCmd(app *App) *cobra.Command {
	return groupCmd("aws", "Amazon Web Services samples",
		newAWSTranslateCmd(app),
		newPollyCmd(app),
		newRekognitionCmd(app),
		newComprehendCmd(app),
		newSESCmd(app),
		newPreflightCmd(app),
	)
}

type translateJob struct {
	text, source, target string
}

func newAWSTranslateCmd(app *App) *cobra.Command {
	var from, to string
	var detect bool
	cmd := &cobra.Command{
		Use:   "translate [text...]",
		Short: "Translate text with Amazon Translate",
		Long: `Translate each argument from --from to --to. Without arguments the sample translates a
Japanese, an English and a French sentence and detects the language of a fourth one.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r := app.runner
			f, err := app.aws(ctx)
			if err != nil {
				return app.client(cmd, "aws.NewFactory", err)
			}
			t := translation.NewAWSTranslator(f.Translate())

			jobs := make([]translateJob, 0, len(args))
			for _, a := range args {
				jobs = append(jobs, translateJob{a, from, to})
			}
			if len(jobs) == 0 {
				jobs = []translateJob{
					{"今日はいい天気ですね！", "ja", "en"},
					{"Recently, I've been working on a project that uses various API services.", "en", "ja"},
					{"Bonjour, comment allez-vous? C'est un beau jour.", translation.Auto, "ja"},
				}
				detect = true
			}

			type record struct {
				Original string `json:"original"`
				translation.Result
			}
			records := make([]record, 0, len(jobs))
			for _, j := range jobs {
				res, ok, err := pipeline.Invoke(ctx, r, "translate.TranslateText", func(ctx context.Context) (translation.Result, error) {
					return t.Translate(ctx, j.text, j.source, j.target)
				})
				if err != nil {
					return err
				}
				if !ok {
					continue
				}
				r.Printf("原文 (%s): %s\n翻訳 (%s): %s\n\n", res.Source, j.text, res.Target, res.Text)
				records = append(records, record{Original: j.text, Result: res})
			}
			r.EmitJSON(ctx, "translations.json", records)

			if !detect {
				return nil
			}
			text := defaultDetectText
			if len(args) > 0 {
				text = args[0]
			}
			comprehend := f.Comprehend()
			lang, ok, err := pipeline.Invoke(ctx, r, "comprehend.DetectDominantLanguage", func(ctx context.Context) (textanalysis.Language, error) {
				return translation.DetectLanguage(ctx, comprehend, text)
			})
			if err != nil || !ok {
				return err
			}
			r.Printf("検出された言語: %s\n", textanalysis.FormatLanguage([]textanalysis.Language{lang}))
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", translation.Auto, "Source language code or auto")
	cmd.Flags().StringVar(&to, "to", "en", "Target language code")
	cmd.Flags().BoolVar(&detect, "detect", false, "Also detect the dominant language of the first text with Comprehend")
	return cmd
}

func newPollyCmd(app *App) *cobra.Command {
	var req speech.Request
	var out string
	cmd := &cobra.Command{
		Use:   "polly [text]",
		Short: "Synthesize speech with Amazon Polly",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r := app.runner
			f, err := app.aws(ctx)
			if err != nil {
				return app.client(cmd, "aws.NewFactory", err)
			}
			req.Text = defaultPollyText
			if len(args) == 1 {
				req.Text = args[0]
			}
			p := speech.NewPolly(f.Polly())

			stop := r.Track("synthesizing speech")
			audio, ok, err := pipeline.Invoke(ctx, r, "polly.SynthesizeSpeech", func(ctx context.Context) ([]byte, error) {
				return p.Synthesize(ctx, req)
			})
			stop()
			if err != nil || !ok {
				return err
			}
			if r.Emit(ctx, sink.Bytes(out, audio, sink.ContentTypeMP3)) {
				r.Printf("音声ファイル '%s' を作成しました。\n", out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&req.VoiceID, "voice", speech.DefaultVoice, "Polly voice id")
	cmd.Flags().StringVar(&req.Engine, "engine", speech.EngineStandard, "Engine: standard or neural")
	cmd.Flags().StringVar(&req.LanguageCode, "lang", speech.DefaultLanguage, "Language code")
	cmd.Flags().StringVar(&out, "out", "speech.mp3", "Artifact name of the audio")

	cmd.AddCommand(newPollyVoicesCmd(app), newPollyAllVoicesCmd(app))
	return cmd
}

func newPollyVoicesCmd(app *App) *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "voices",
		Short: "List the Polly voices of a language",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r := app.runner
			f, err := app.aws(ctx)
			if err != nil {
				return app.client(cmd, "aws.NewFactory", err)
			}
			p := speech.NewPolly(f.Polly())
			voices, ok, err := pipeline.Invoke(ctx, r, "polly.DescribeVoices", func(ctx context.Context) ([]speech.Voice, error) {
				return p.ListVoices(ctx, lang)
			})
			if err != nil || !ok {
				return err
			}
			for _, v := range voices {
				r.Printf("%s (%s, %s) engines: %s\n", v.ID, v.Gender, v.Language, strings.Join(v.Engines, ", "))
			}
			r.EmitJSON(ctx, "voices_"+lang+".json", voices)
			return nil
		},
	}
	cmd.Flags().StringVar(&lang, "lang", speech.DefaultLanguage, "Language code")
	return cmd
}

func newPollyAllVoicesCmd(app *App) *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "all-voices [text]",
		Short: "Synthesize the text with every voice of a language",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, err := app.aws(ctx)
			if err != nil {
				return app.client(cmd, "aws.NewFactory", err)
			}
			text := defaultPollyText
			if len(args) == 1 {
				text = args[0]
			}
			n, err := speech.SynthesizeAllVoices(ctx, app.runner, speech.NewPolly(f.Polly()), text, lang)
			if err != nil {
				return err
			}
			app.runner.Printf("%d voice(s) synthesized\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&lang, "lang", speech.DefaultLanguage, "Language code")
	return cmd
}

func newRekognitionCmd(app *App) *cobra.Command {
	return groupCmd("rekognition", "Amazon Rekognition image analysis",
		newLabelsCmd(app),
		newFacesCmd(app),
		newTextCmd(app),
	)
}

func (a *App) imagePaths(args []string, fallback string) []string {
	if len(args) > 0 {
		return args
	}
	return []string{a.dataPath(fallback)}
}

func newLabelsCmd(app *App) *cobra.Command {
	var maxLabels int32
	var minConfidence float32
	var withPosition bool
	cmd := &cobra.Command{
		Use:   "labels [image...]",
		Short: "Detect objects and scenes (default data/objects.png)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r := app.runner
			f, err := app.aws(ctx)
			if err != nil {
				return app.client(cmd, "aws.NewFactory", err)
			}
			opts := imaging.LabelOptions{MaxLabels: &maxLabels, MinConfidence: &minConfidence, WithPosition: withPosition}
			return imaging.DetectLabelsFiles(ctx, r, imaging.NewRekognition(f.Rekognition()), opts, app.imagePaths(args, "objects.png"))
		},
	}
	cmd.Flags().Int32Var(&maxLabels, "max-labels", imaging.DefaultMaxLabels, "Maximum number of labels (1-1000)")
	cmd.Flags().Float32Var(&minConfidence, "min-confidence", imaging.DefaultMinConfidence, "Minimum confidence (0-100)")
	cmd.Flags().BoolVar(&withPosition, "with-position", false, "Include bounding boxes and parent labels")
	return cmd
}

func newFacesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "faces [image...]",
		Short: "Detect faces and their attributes (default data/faces.png)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r := app.runner
			f, err := app.aws(ctx)
			if err != nil {
				return app.client(cmd, "aws.NewFactory", err)
			}
			rek := imaging.NewRekognition(f.Rekognition())
			return imaging.ForEachImage(ctx, r, app.imagePaths(args, "faces.png"), func(path string, image []byte) error {
				faces, ok, err := pipeline.Invoke(ctx, r, "rekognition.DetectFaces", func(ctx context.Context) ([]imaging.Face, error) {
					return rek.Faces(ctx, image)
				})
				if err != nil || !ok {
					return err
				}
				artifacts, ok, err := pipeline.Prepare(ctx, r, "imaging.FaceArtifacts", func() ([]sink.Artifact, error) {
					return imaging.FaceArtifacts(input.Stem(path), faces)
				})
				if err != nil || !ok {
					return err
				}
				r.Printf("=== %s の顔分析結果 ===\n", path)
				printLines(r.Out(), imaging.FaceLines(faces))
				r.Emit(ctx, artifacts...)
				return nil
			})
		},
	}
}

func newTextCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "text [image...]",
		Short: "Detect lines of text (default data/text.jpg)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r := app.runner
			f, err := app.aws(ctx)
			if err != nil {
				return app.client(cmd, "aws.NewFactory", err)
			}
			rek := imaging.NewRekognition(f.Rekognition())
			return imaging.ForEachImage(ctx, r, app.imagePaths(args, "text.jpg"), func(path string, image []byte) error {
				lines, ok, err := pipeline.Invoke(ctx, r, "rekognition.DetectText", func(ctx context.Context) ([]imaging.TextLine, error) {
					return rek.Text(ctx, image)
				})
				if err != nil || !ok {
					return err
				}
				r.Printf("=== %s のテキスト検出結果 ===\n", path)
				printLines(r.Out(), imaging.TextLines(lines))
				r.Emit(ctx, imaging.TextArtifact(input.Stem(path), lines))
				return nil
			})
		},
	}
}

func newComprehendCmd(app *App) *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "comprehend [file...]",
		Short: "Analyze sentiment, key phrases, entities and language of text files (default data/*.txt)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r := app.runner
			f, err := app.aws(ctx)
			if err != nil {
				return app.client(cmd, "aws.NewFactory", err)
			}
			files := args
			if len(files) == 0 {
				var ok bool
				files, ok, err = pipeline.Prepare(ctx, r, "input.Glob", func() ([]string, error) {
					return input.Glob(app.cfg.DataDir, "*.txt")
				})
				if err != nil || !ok {
					return err
				}
			}
			if len(files) == 0 {
				r.Printf("%s にテキストファイルがありません。\n", app.cfg.DataDir)
				return nil
			}

			a := textanalysis.NewAnalyzer(f.Comprehend(), lang)
			for _, file := range files {
				analysis, ok, err := textanalysis.AnalyzeFile(ctx, r, a, file)
				if err != nil {
					return err
				}
				if !ok {
					continue
				}
				artifacts, ok, err := pipeline.Prepare(ctx, r, "textanalysis.Report", func() ([]sink.Artifact, error) {
					return textanalysis.Report(analysis)
				})
				if err != nil {
					return err
				}
				if !ok {
					continue
				}
				r.Printf("=== %s ===\n", file)
				if analysis.Sentiment != nil {
					printLines(r.Out(), textanalysis.FormatSentiment(*analysis.Sentiment))
				}
				r.Printf("言語: %s\n\n", textanalysis.FormatLanguage(analysis.Languages))
				r.Emit(ctx, artifacts...)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&lang, "lang", textanalysis.DefaultLanguage, "Document language code")
	return cmd
}

func newSESCmd(app *App) *cobra.Command {
	var textFile, htmlFile string
	var htmlOnly, textOnly bool
	cmd := &cobra.Command{
		Use:   "ses",
		Short: "Send a text and an HTML email with Amazon SES",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r := app.runner
			addr, err := creds.ResolveMail(app.cfg)
			if err != nil {
				return app.client(cmd, "creds.ResolveMail", err)
			}
			f, err := app.aws(ctx)
			if err != nil {
				return app.client(cmd, "aws.NewFactory", err)
			}
			sender := mail.NewSender(f.SES())
			if textFile == "" {
				textFile = app.dataPath("mail_body.txt")
			}
			if htmlFile == "" {
				htmlFile = app.dataPath("mail_body.html")
			}

			text, ok, err := pipeline.Prepare(ctx, r, "input.ReadText", func() (string, error) {
				return input.ReadText(textFile)
			})
			if err != nil {
				return err
			}
			if ok && !htmlOnly {
				m := mail.Message{From: addr.Sender, To: addr.Recipient, Subject: mail.TextSubject, Text: text}
				if err := sendMail(ctx, r, "ses.SendEmail(text)", func(ctx context.Context) (string, error) {
					return sender.SendText(ctx, m)
				}); err != nil {
					return err
				}
			}
			if textOnly {
				return nil
			}

			body, ok, err := pipeline.Prepare(ctx, r, "input.ReadText", func() (string, error) {
				return input.ReadText(htmlFile)
			})
			if err != nil || !ok {
				return err
			}
			m := mail.Message{From: addr.Sender, To: addr.Recipient, Subject: mail.HTMLSubject, Text: text, HTML: body}
			return sendMail(ctx, r, "ses.SendEmail(html)", func(ctx context.Context) (string, error) {
				return sender.SendHTML(ctx, m)
			})
		},
	}
	cmd.Flags().StringVar(&textFile, "text-file", "", "Plain text body (default data/mail_body.txt)")
	cmd.Flags().StringVar(&htmlFile, "html-file", "", "HTML body (default data/mail_body.html)")
	cmd.Flags().BoolVar(&htmlOnly, "html-only", false, "Only send the HTML message")
	cmd.Flags().BoolVar(&textOnly, "text-only", false, "Only send the text message")
	return cmd
}

func sendMail(ctx context.Context, r *pipeline.Runner, op string, send func(context.Context) (string, error)) error {
	id, ok, err := pipeline.Invoke(ctx, r, op, send)
	if err != nil || !ok {
		return err
	}
	r.Printf("メールを送信しました。MessageId: %s\n", id)
	return nil
}

func newPreflightCmd(app *App) *cobra.Command {
	var principal string
	cmd := &cobra.Command{
		Use:   "preflight [integration...]",
		Short: "Check that the AWS principal may call the actions the samples use",
		Long: fmt.Sprintf(`Simulate the IAM policies of the configured principal for the actions of the named
integrations (%s). Without arguments every integration is checked.`, strings.Join(integrationNames(), ", ")),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r := app.runner
			actions, err := preflight.ActionsFor(args...)
			if err != nil {
				return r.Check(ctx, "preflight.ActionsFor", err)
			}
			f, err := app.aws(ctx)
			if err != nil {
				return app.client(cmd, "aws.NewFactory", err)
			}
			checker := preflight.NewChecker(f.IAM(), f.STS())
			report, ok, err := pipeline.Invoke(ctx, r, "iam.SimulatePrincipalPolicy", func(ctx context.Context) (preflight.Report, error) {
				return checker.Check(ctx, principal, actions)
			})
			if err != nil || !ok {
				return err
			}
			printLines(r.Out(), report.Lines())
			r.EmitJSON(ctx, "preflight.json", report)
			if denied := report.Denied(); len(denied) > 0 {
				return apierr.New(apierr.KindProvider, "preflight", fmt.Errorf("%d action(s) denied: %s", len(denied), strings.Join(denied, ", ")))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&principal, "principal", "", "IAM user or role ARN (default: the caller)")
	return cmd
}

func integrationNames() []string {
	names := make([]string, 0, len(preflight.Actions))
	for name := range preflight.Actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
