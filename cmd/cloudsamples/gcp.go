package main

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gurre/s3streamer"
	"github.com/spf13/cobra"

	"github.com/gurre/cloud-api-samples/apierr"
	"github.com/gurre/cloud-api-samples/calendar"
	"github.com/gurre/cloud-api-samples/config"
	"github.com/gurre/cloud-api-samples/creds"
	"github.com/gurre/cloud-api-samples/imaging"
	"github.com/gurre/cloud-api-samples/input"
	"github.com/gurre/cloud-api-samples/maps"
	"github.com/gurre/cloud-api-samples/pipeline"
	"github.com/gurre/cloud-api-samples/receipt"
	"github.com/gurre/cloud-api-samples/sheets"
	"github.com/gurre/cloud-api-samples/sink"
	"github.com/gurre/cloud-api-samples/speech"
	"github.com/gurre/cloud-api-samples/translation"
)

func newGCPCmd(app *App) *cobra.Command {
	return groupCmd("gcp", "Google Cloud and Google Workspace samples",
		groupCmd("vision", "Cloud Vision text detection", newOCRCmd(app)),
		groupCmd("receipt", "Summarize receipt OCR results with Gemini",
			newReceiptSummarizeCmd(app),
			newReceiptSummarizeAllCmd(app),
		),
		groupCmd("translate", "Cloud Translation",
			newGoogleTranslateHTMLCmd(app),
			newGoogleTranslateLinesCmd(app),
		),
		newTTSCmd(app),
		newMapsCmd(app),
		newSheetsCmd(app),
		newCalendarCmd(app),
	)
}

func newOCRCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ocr [image...]",
		Short: "Read the text of receipt images (default data/img1.jpg)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r := app.runner
			f, err := app.googleKey()
			if err != nil {
				return app.client(cmd, "creds.ResolveAPIKey", err)
			}
			client, err := f.Vision(ctx)
			if err != nil {
				return app.client(cmd, "gcp.Vision", err)
			}
			v := imaging.NewVision(client)
			return imaging.ForEachImage(ctx, r, app.imagePaths(args, "img1.jpg"), func(p string, image []byte) error {
				res, ok, err := pipeline.Invoke(ctx, r, "vision.images.annotate", func(ctx context.Context) (imaging.OCRResult, error) {
					return v.OCR(ctx, image)
				})
				if err != nil || !ok {
					return err
				}
				a, ok, err := pipeline.Prepare(ctx, r, "imaging.OCRArtifact", func() (sink.Artifact, error) {
					return imaging.OCRArtifact(imaging.OCRDir, input.Stem(p), res)
				})
				if err != nil || !ok {
					return err
				}
				r.Printf("=== %s ===\n%s\n", p, res.FullText)
				if r.Emit(ctx, a) {
					r.Printf("結果を保存しました: %s\n", a.Name)
				}
				return nil
			})
		},
	}
}

// summarizer builds a Gemini-backed receipt summarizer. The returned function releases it.
func (a *App) summarizer(cmd *cobra.Command) (*receipt.Summarizer, func(), error) {
	ctx := cmd.Context()
	f, err := a.googleKey()
	if err != nil {
		return nil, nil, a.client(cmd, "creds.ResolveAPIKey", err)
	}
	model, err := f.Gemini(ctx, a.cfg.GeminiModel, receipt.Temperature)
	if err != nil {
		return nil, nil, a.client(cmd, "gcp.Gemini", err)
	}
	return receipt.NewSummarizer(model), func() { _ = model.Close() }, nil
}

func newReceiptSummarizeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "summarize [ocr.json]",
		Short: "Extract registration number, store, total and tax from one OCR result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, done, err := app.summarizer(cmd)
			if s == nil {
				return err
			}
			defer done()

			file := app.resultsPath(path.Join(imaging.OCRDir, "img1.json"))
			if len(args) == 1 {
				file = args[0]
			}
			stop := app.runner.Track("summarizing " + filepath.Base(file))
			summary, ok, err := receipt.SummarizeFile(cmd.Context(), app.runner, s, file)
			stop()
			if err != nil || !ok {
				return err
			}
			printSummary(app.runner, summary)
			return nil
		},
	}
}

func printSummary(r *pipeline.Runner, s receipt.Summary) {
	r.Printf("%s: %s\n%s: %s\n%s: %s\n%s: %s\n",
		receipt.KeyRegistrationNumber, s.RegistrationNumber,
		receipt.KeyStore, s.Store,
		receipt.KeyTotal, s.Total,
		receipt.KeyTax, s.Tax,
	)
}

func newReceiptSummarizeAllCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "summarize-all [ocr-dir]",
		Short: "Summarize every OCR result and write summary/summary.csv",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, done, err := app.summarizer(cmd)
			if s == nil {
				return err
			}
			defer done()

			dir := app.resultsPath(imaging.OCRDir)
			if len(args) == 1 {
				dir = args[0]
			}
			n, err := receipt.SummarizeAll(cmd.Context(), app.runner, s, dir)
			if err != nil {
				return err
			}
			app.runner.Printf("%d 件のレシートを要約しました。\n", n)
			return nil
		},
	}
}

// googleTranslator builds a Cloud Translation client.
func (a *App) googleTranslator(cmd *cobra.Command) (*translation.GoogleTranslator, error) {
	f, err := a.googleKey()
	if err != nil {
		return nil, a.client(cmd, "creds.ResolveAPIKey", err)
	}
	client, err := f.Translate(cmd.Context())
	if err != nil {
		return nil, a.client(cmd, "gcp.Translate", err)
	}
	return translation.NewGoogleTranslator(client), nil
}

func newGoogleTranslateHTMLCmd(app *App) *cobra.Command {
	var from, to, out string
	cmd := &cobra.Command{
		Use:   "html [file]",
		Short: "Translate an HTML document in one call (default data/ja.html)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r := app.runner
			t, err := app.googleTranslator(cmd)
			if t == nil {
				return err
			}
			file := app.dataPath("ja.html")
			if len(args) == 1 {
				file = args[0]
			}
			content, ok, err := pipeline.Prepare(ctx, r, "input.ReadText", func() (string, error) {
				return input.ReadText(file)
			})
			if err != nil || !ok {
				return err
			}
			translated, ok, err := pipeline.Invoke(ctx, r, "translate.translations.list", func(ctx context.Context) (string, error) {
				return t.Translate(ctx, content, from, to)
			})
			if err != nil || !ok {
				return err
			}
			if r.Emit(ctx, sink.HTML(out, translated)) {
				r.Printf("Translation complete. Output saved to %s\n", out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "ja", "Source language code")
	cmd.Flags().StringVar(&to, "to", "en", "Target language code")
	cmd.Flags().StringVar(&out, "out", "en.html", "Artifact name")
	return cmd
}

func newGoogleTranslateLinesCmd(app *App) *cobra.Command {
	var from, to, out string
	cmd := &cobra.Command{
		Use:   "lines [file|s3://bucket/key]",
		Short: "Translate a text file line by line, keeping blank lines (default data/ja.txt)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r := app.runner
			t, err := app.googleTranslator(cmd)
			if t == nil {
				return err
			}
			src := app.dataPath("ja.txt")
			if len(args) == 1 {
				src = args[0]
			}
			lines, ok, err := app.readLines(cmd, src)
			if err != nil || !ok {
				return err
			}
			translated, ok, err := pipeline.Invoke(ctx, r, "translate.translations.list", func(ctx context.Context) (string, error) {
				return t.WithFormat("text").TranslateLines(ctx, strings.Join(lines, "\n"), from, to)
			})
			if err != nil || !ok {
				return err
			}
			if r.Emit(ctx, sink.Text(out, translated)) {
				r.Printf("Translation complete. Output saved to %s\n", out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "ja", "Source language code")
	cmd.Flags().StringVar(&to, "to", "en", "Target language code")
	cmd.Flags().StringVar(&out, "out", "en_for_each_line.txt", "Artifact name")
	return cmd
}

// readLines reads a local file or an s3:// object. S3 objects are streamed with the AWS
// credentials of the configuration.
func (a *App) readLines(cmd *cobra.Command, src string) ([]string, bool, error) {
	ctx := cmd.Context()
	var streamer s3streamer.Streamer
	if strings.HasPrefix(src, "s3://") {
		f, err := a.aws(ctx)
		if err != nil {
			return nil, false, a.client(cmd, "aws.NewFactory", err)
		}
		streamer = s3streamer.NewS3Streamer(f.S3())
	}
	return pipeline.Prepare(ctx, a.runner, "input.Lines", func() ([]string, error) {
		return input.Lines(ctx, src, streamer)
	})
}

func newTTSCmd(app *App) *cobra.Command {
	var voice speech.GoogleVoice
	var out string
	cmd := &cobra.Command{
		Use:   "tts [file]",
		Short: "Synthesize a text file with Cloud Text-to-Speech (default data/ja.txt)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r := app.runner
			f, err := app.googleKey()
			if err != nil {
				return app.client(cmd, "creds.ResolveAPIKey", err)
			}
			client, err := f.TextToSpeech(ctx)
			if err != nil {
				return app.client(cmd, "gcp.TextToSpeech", err)
			}
			file := app.dataPath("ja.txt")
			if len(args) == 1 {
				file = args[0]
			}
			text, ok, err := pipeline.Prepare(ctx, r, "input.ReadText", func() (string, error) {
				return input.ReadText(file)
			})
			if err != nil || !ok {
				return err
			}
			tts := speech.NewGoogleTTS(client, voice)
			audio, ok, err := pipeline.Invoke(ctx, r, "texttospeech.text.synthesize", func(ctx context.Context) ([]byte, error) {
				return tts.Synthesize(ctx, text)
			})
			if err != nil || !ok {
				return err
			}
			if r.Emit(ctx, sink.Bytes(out, audio, sink.ContentTypeMP3)) {
				r.Printf("音声コンテンツが \"%s\" に保存されました\n", out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&voice.Name, "voice", speech.DefaultGoogleVoice, "Voice name")
	cmd.Flags().StringVar(&voice.LanguageCode, "lang", speech.DefaultLanguage, "Language code")
	cmd.Flags().StringVar(&voice.Gender, "gender", speech.DefaultGoogleGender, "SSML gender")
	cmd.Flags().StringVar(&out, "out", "ja.mp3", "Artifact name")
	return cmd
}

// routeFlags are the route options shared by the maps commands.
type routeFlags struct {
	origin      string
	destination string
	waypoints   []string
	mode        string
}

func (f *routeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.origin, "origin", "東京, 日本", "Start of the route")
	cmd.Flags().StringVar(&f.destination, "destination", "熱海, 日本", "End of the route")
	cmd.Flags().StringSliceVar(&f.waypoints, "waypoint", []string{"修善寺温泉, 静岡", "小田原城, 神奈川", "伊豆高原, 静岡", "下田, 静岡"}, "Stop along the route, repeatable")
	cmd.Flags().StringVar(&f.mode, "mode", maps.ModeDriving, "driving, walking, bicycling or transit")
}

func newMapsCmd(app *App) *cobra.Command {
	return groupCmd("maps", "Google Maps links, Directions and Routes",
		newMapsURLCmd(app),
		newDirectionsCmd(app),
		newMatrixCmd(app),
		newMapsPageCmd(app),
	)
}

func newMapsURLCmd(app *App) *cobra.Command {
	var route routeFlags
	cmd := &cobra.Command{
		Use:   "url",
		Short: "Print Google Maps links for a route",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := app.runner
			r.Println(maps.DirURL(route.origin, route.destination, route.waypoints, route.mode))
			r.Println(maps.PathURL(route.origin, route.destination, route.waypoints, nil))
			return nil
		},
	}
	route.register(cmd)
	return cmd
}

// directionsClient builds a maps client backed by the Directions API.
func directionsClient(app *App, cmd *cobra.Command) (*maps.Client, error) {
	f, err := app.googleKey()
	if err != nil {
		return nil, app.client(cmd, "creds.ResolveAPIKey", err)
	}
	d, err := f.Directions()
	if err != nil {
		return nil, app.client(cmd, "gcp.Directions", err)
	}
	return maps.NewClient(d, nil), nil
}

// matrixClient builds a maps client backed by the Routes API. The returned function releases it.
func matrixClient(app *App, cmd *cobra.Command) (*maps.Client, func(), error) {
	f, err := app.googleKey()
	if err != nil {
		return nil, nil, app.client(cmd, "creds.ResolveAPIKey", err)
	}
	m, err := f.RouteMatrix(cmd.Context())
	if err != nil {
		return nil, nil, app.client(cmd, "gcp.RouteMatrix", err)
	}
	return maps.NewClient(nil, m), func() { _ = m.Close() }, nil
}

func newDirectionsCmd(app *App) *cobra.Command {
	var route routeFlags
	var optimize bool
	var departure, language string
	cmd := &cobra.Command{
		Use:   "directions",
		Short: "Compute a route with the Directions API and save the response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r := app.runner
			c, err := directionsClient(app, cmd)
			if c == nil {
				return err
			}
			req := maps.DirectionsRequest{
				Origin:      route.origin,
				Destination: route.destination,
				Waypoints:   route.waypoints,
				Optimize:    optimize,
				Mode:        route.mode,
				Language:    language,
			}
			if departure != "" {
				t, err := time.ParseInLocation(maps.DepartureLayout, departure, tokyo())
				if err != nil {
					return r.Check(ctx, "maps.Departure", apierr.Configf("maps.Departure", "departure must look like %s: %v", maps.DepartureLayout, err))
				}
				req.Departure = t
			}

			d, ok, err := pipeline.Invoke(ctx, r, "maps.directions", func(ctx context.Context) (maps.Directions, error) {
				return c.Directions(ctx, req)
			})
			if err != nil || !ok {
				return err
			}
			printLines(r.Out(), maps.LegLines(d))
			r.Println(maps.PathURL(req.Origin, req.Destination, req.Waypoints, d.WaypointOrder()))
			r.EmitJSON(ctx, maps.FileName(req), d)
			return nil
		},
	}
	route.register(cmd)
	cmd.Flags().BoolVar(&optimize, "optimize", false, "Let the API reorder the waypoints")
	cmd.Flags().StringVar(&departure, "departure", "", "Departure time in Asia/Tokyo, "+maps.DepartureLayout)
	cmd.Flags().StringVar(&language, "language", "ja", "Language of the instructions")
	return cmd
}

func tokyo() *time.Location {
	loc, err := time.LoadLocation(calendar.DefaultTimeZone)
	if err != nil {
		return time.FixedZone("JST", 9*60*60)
	}
	return loc
}

// parseLatLngs parses "lat,lng" pairs.
func parseLatLngs(values []string) ([]maps.LatLng, error) {
	out := make([]maps.LatLng, 0, len(values))
	for _, v := range values {
		lat, lng, found := strings.Cut(v, ",")
		if !found {
			return nil, fmt.Errorf("%q is not a lat,lng pair", v)
		}
		la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude in %q: %w", v, err)
		}
		ln, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid longitude in %q: %w", v, err)
		}
		out = append(out, maps.LatLng{Latitude: la, Longitude: ln})
	}
	return out, nil
}

func newMatrixCmd(app *App) *cobra.Command {
	var origins, destinations []string
	var avoidFerries bool
	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Compute a route matrix with the Routes API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r := app.runner
			c, release, err := matrixClient(app, cmd)
			if c == nil {
				return err
			}
			defer release()
			req := maps.MatrixRequest{AvoidFerries: avoidFerries}
			if req.Origins, err = parseLatLngs(origins); err != nil {
				return r.Check(ctx, "maps.Origins", apierr.Configf("maps.Origins", "%v", err))
			}
			if req.Destinations, err = parseLatLngs(destinations); err != nil {
				return r.Check(ctx, "maps.Destinations", apierr.Configf("maps.Destinations", "%v", err))
			}

			elements, ok, err := pipeline.Invoke(ctx, r, "routes.computeRouteMatrix", func(ctx context.Context) ([]maps.MatrixElement, error) {
				return c.RouteMatrix(ctx, req)
			})
			if err != nil || !ok {
				return err
			}
			for _, e := range elements {
				r.Printf("%d -> %d: %ds, %dm (%s)\n", e.OriginIndex, e.DestinationIndex, e.DurationSeconds, e.DistanceMeters, e.Condition)
			}
			r.EmitJSON(ctx, "route_matrix.json", elements)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&origins, "origin", []string{"37.420761,-122.081356", "37.403184,-122.097371"}, "Origin lat,lng, repeatable")
	cmd.Flags().StringSliceVar(&destinations, "destination", []string{"37.420999,-122.086894", "37.383047,-122.044651"}, "Destination lat,lng, repeatable")
	cmd.Flags().BoolVar(&avoidFerries, "avoid-ferries", true, "Avoid ferries from every origin")
	return cmd
}

func newMapsPageCmd(app *App) *cobra.Command {
	var route routeFlags
	var templatePath string
	cmd := &cobra.Command{
		Use:   "page",
		Short: "Render an HTML map page with the optimized route",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r := app.runner
			key, err := creds.ResolveAPIKey(app.cfg)
			if err != nil {
				return app.client(cmd, "creds.ResolveAPIKey", err)
			}
			page, ok, err := pipeline.Prepare(ctx, r, "maps.RenderPage", func() (string, error) {
				t, err := maps.DefaultTemplate()
				if templatePath != "" {
					t, err = maps.LoadTemplate(templatePath)
				}
				if err != nil {
					return "", err
				}
				return maps.RenderPage(t, maps.PageData{
					APIKey:      key,
					Origin:      route.origin,
					Destination: route.destination,
					Waypoints:   route.waypoints,
				})
			})
			if err != nil || !ok {
				return err
			}
			if r.Emit(ctx, sink.HTML(maps.PageName, page)) {
				r.Printf("HTML file created: %s\n", app.resultsPath(maps.PageName))
			}
			return nil
		},
	}
	route.register(cmd)
	cmd.Flags().StringVar(&templatePath, "template", "", "Page template (default: the bundled optimized_waypoints.html)")
	return cmd
}

// sheetsClient connects to the configured spreadsheet.
func (a *App) sheetsClient(cmd *cobra.Command, readOnly bool) (*sheets.Client, error) {
	id, err := creds.ResolveSpreadsheetID(a.cfg)
	if err != nil {
		return nil, a.client(cmd, "creds.ResolveSpreadsheetID", err)
	}
	f, err := a.googleAccount()
	if err != nil {
		return nil, a.client(cmd, "creds.ResolveServiceAccount", err)
	}
	api, err := f.Sheets(cmd.Context(), readOnly)
	if err != nil {
		return nil, a.client(cmd, "gcp.Sheets", err)
	}
	c, err := sheets.NewClient(api, id)
	if err != nil {
		return nil, a.client(cmd, "sheets.NewClient", err)
	}
	return c, nil
}

// sampleRows is the table written by the sheets write sample.
var sampleRows = [][]string{
	{"名前", "年齢", "都市"},
	{"山田太郎", "30", "東京"},
	{"佐藤花子", "25", "大阪"},
	{"鈴木一郎", "40", "名古屋"},
}

func newSheetsCmd(app *App) *cobra.Command {
	var title string

	info := &cobra.Command{
		Use:   "info",
		Short: "Print the spreadsheet title and its worksheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r := app.runner
			c, err := app.sheetsClient(cmd, true)
			if c == nil {
				return err
			}
			ss, ok, err := pipeline.Invoke(ctx, r, "sheets.spreadsheets.get", func(ctx context.Context) (sheets.Info, error) {
				return c.Info(ctx)
			})
			if err != nil || !ok {
				return err
			}
			r.Printf("スプレッドシートのタイトル: %s\n", ss.Title)
			r.Printf("ワークシート: %s\n", strings.Join(ss.Titles(), ", "))
			r.EmitJSON(ctx, "spreadsheet.json", ss)
			return nil
		},
	}

	write := &cobra.Command{
		Use:   "write",
		Short: "Add a worksheet when missing and write a sample table to A1",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r := app.runner
			c, err := app.sheetsClient(cmd, false)
			if c == nil {
				return err
			}
			type ensured struct {
				sheet   sheets.Sheet
				created bool
			}
			s, ok, err := pipeline.Invoke(ctx, r, "sheets.spreadsheets.batchUpdate", func(ctx context.Context) (ensured, error) {
				sheet, created, err := c.EnsureSheet(ctx, title)
				return ensured{sheet, created}, err
			})
			if err != nil || !ok {
				return err
			}
			if s.created {
				r.Printf("新しいワークシート '%s' を作成しました。\n", s.sheet.Title)
			} else {
				r.Printf("ワークシート '%s' は既に存在します。\n", s.sheet.Title)
			}
			n, ok, err := pipeline.Invoke(ctx, r, "sheets.spreadsheets.values.update", func(ctx context.Context) (int64, error) {
				return c.WriteValues(ctx, title, "A1", sampleRows)
			})
			if err != nil || !ok {
				return err
			}
			r.Printf("%d セルを書き込みました。\n", n)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete",
		Short: "Delete a worksheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r := app.runner
			c, err := app.sheetsClient(cmd, false)
			if c == nil {
				return err
			}
			deleted, ok, err := pipeline.Invoke(ctx, r, "sheets.spreadsheets.batchUpdate", func(ctx context.Context) (bool, error) {
				return c.DeleteSheet(ctx, title)
			})
			if err != nil || !ok {
				return err
			}
			if deleted {
				r.Printf("ワークシート '%s' を削除しました。\n", title)
			} else {
				r.Printf("ワークシート '%s' が見つかりません。\n", title)
			}
			return nil
		},
	}

	for _, c := range []*cobra.Command{write, del} {
		c.Flags().StringVar(&title, "title", "新しいシート", "Worksheet title")
	}
	return groupCmd("sheets", "Google Sheets", info, write, del)
}

func newCalendarCmd(app *App) *cobra.Command {
	var maxResults int64
	var in calendar.EventInput
	var start string
	var duration time.Duration
	var calSummary, calTZ string

	client := func(cmd *cobra.Command) (*calendar.Client, error) {
		id, err := creds.ResolveCalendarID(app.cfg)
		if err != nil {
			return nil, app.client(cmd, "creds.ResolveCalendarID", err)
		}
		f, err := app.googleAccount()
		if err != nil {
			return nil, app.client(cmd, "creds.ResolveServiceAccount", err)
		}
		return calendar.NewClient(id, calendar.FactoryConnector(f)), nil
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List upcoming events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r := app.runner
			c, err := client(cmd)
			if c == nil {
				return err
			}
			events, ok, err := pipeline.Invoke(ctx, r, "calendar.events.list", func(ctx context.Context) ([]calendar.Event, error) {
				return c.ListEvents(ctx, maxResults)
			})
			if err != nil || !ok {
				return err
			}
			printLines(r.Out(), calendar.EventLines(events))
			r.EmitJSON(ctx, "events.json", events)
			return nil
		},
	}
	list.Flags().Int64Var(&maxResults, "max", calendar.DefaultMaxResults, "Maximum number of events")

	add := &cobra.Command{
		Use:   "add",
		Short: "Add an event (default: a test event one hour from now)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r := app.runner
			c, err := client(cmd)
			if c == nil {
				return err
			}
			in.Start = time.Now().Add(time.Hour).Truncate(time.Minute)
			if start != "" {
				loc, err := time.LoadLocation(in.TimeZone)
				if err != nil {
					return r.Check(ctx, "calendar.Start", apierr.Configf("calendar.Start", "unknown time zone %q", in.TimeZone))
				}
				t, err := time.ParseInLocation(maps.DepartureLayout, start, loc)
				if err != nil {
					return r.Check(ctx, "calendar.Start", apierr.Configf("calendar.Start", "start must look like %s: %v", maps.DepartureLayout, err))
				}
				in.Start = t
			}
			in.End = in.Start.Add(duration)
			ev, ok, err := pipeline.Invoke(ctx, r, "calendar.events.insert", func(ctx context.Context) (calendar.Event, error) {
				return c.AddEvent(ctx, in)
			})
			if err != nil || !ok {
				return err
			}
			r.Printf("イベントが作成されました: %s\n", ev.HTMLLink)
			r.EmitJSON(ctx, "event_"+ev.ID+".json", ev)
			return nil
		},
	}
	add.Flags().StringVar(&in.Summary, "summary", "自動追加テストイベント", "Event title")
	add.Flags().StringVar(&in.Description, "description", "cloudsamples から自動で追加されたイベントです。", "Event description")
	add.Flags().StringVar(&in.TimeZone, "time-zone", calendar.DefaultTimeZone, "Event time zone")
	add.Flags().StringVar(&start, "start", "", "Start time, "+maps.DepartureLayout+" (default: one hour from now)")
	add.Flags().DurationVar(&duration, "duration", time.Hour, "Event length")

	deleteFirst := &cobra.Command{
		Use:   "delete-first",
		Short: "Delete the next upcoming event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r := app.runner
			c, err := client(cmd)
			if c == nil {
				return err
			}
			type deletion struct {
				event calendar.Event
				found bool
			}
			d, ok, err := pipeline.Invoke(ctx, r, "calendar.events.delete", func(ctx context.Context) (deletion, error) {
				ev, found, err := c.DeleteFirstEvent(ctx)
				return deletion{ev, found}, err
			})
			if err != nil || !ok {
				return err
			}
			if !d.found {
				r.Println("No upcoming events found.")
				return nil
			}
			r.Printf("イベント '%s' (ID: %s) を削除しました。\n", d.event.Summary, d.event.ID)
			return nil
		},
	}

	createCalendar := &cobra.Command{
		Use:   "create-calendar",
		Short: "Create a secondary calendar owned by the service account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r := app.runner
			f, err := app.googleAccount()
			if err != nil {
				return app.client(cmd, "creds.ResolveServiceAccount", err)
			}
			api, err := calendar.Connect(ctx, calendar.FactoryConnector(f), false)
			if err != nil {
				return app.client(cmd, "calendar.Connect", err)
			}
			cal, ok, err := pipeline.Invoke(ctx, r, "calendar.calendars.insert", func(ctx context.Context) (calendar.Calendar, error) {
				return calendar.CreateCalendar(ctx, api, calSummary, calTZ)
			})
			if err != nil || !ok {
				return err
			}
			r.Printf("カレンダーを作成しました: %s (ID: %s)\n", cal.Summary, cal.ID)
			r.Printf("%s=%s を .env に設定すると、このカレンダーを使えます。\n", config.EnvCalendarID, cal.ID)
			return nil
		},
	}
	createCalendar.Flags().StringVar(&calSummary, "summary", "サンプルカレンダー", "Calendar title")
	createCalendar.Flags().StringVar(&calTZ, "time-zone", calendar.DefaultTimeZone, "Calendar time zone")

	return groupCmd("calendar", "Google Calendar", list, add, deleteFirst, createCalendar)
}
