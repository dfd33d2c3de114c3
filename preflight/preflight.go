// Package preflight checks, before any sample runs, whether the configured AWS principal is
// allowed to call the actions the AWS samples need. It simulates the principal's policies with
// IAM and never calls the sample services themselves.
package preflight

import (
	"context"
	"fmt"
	"sort"
	"strings"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/gurre/cloud-api-samples/apierr"
	"github.com/gurre/cloud-api-samples/aws"
)

// Actions lists the IAM actions of each AWS integration.
var Actions = map[string][]string{
	"translate": {"translate:TranslateText", "comprehend:DetectDominantLanguage"},
	"comprehend": {
		"comprehend:DetectSentiment",
		"comprehend:DetectKeyPhrases",
		"comprehend:DetectEntities",
		"comprehend:DetectDominantLanguage",
	},
	"polly":       {"polly:SynthesizeSpeech", "polly:DescribeVoices"},
	"rekognition": {"rekognition:DetectLabels", "rekognition:DetectFaces", "rekognition:DetectText"},
	"ses":         {"ses:SendEmail"},
}

// ActionsFor returns the sorted, de-duplicated actions of the named integrations. No names
// selects every integration; an unknown name is a configuration error.
func ActionsFor(integrations ...string) ([]string, error) {
	if len(integrations) == 0 {
		for name := range Actions {
			integrations = append(integrations, name)
		}
	}
	seen := make(map[string]bool)
	var actions []string
	for _, name := range integrations {
		list, ok := Actions[strings.ToLower(name)]
		if !ok {
			return nil, apierr.Configf("preflight.ActionsFor", "unknown integration %q", name)
		}
		for _, a := range list {
			if !seen[a] {
				seen[a] = true
				actions = append(actions, a)
			}
		}
	}
	sort.Strings(actions)
	return actions, nil
}

// Result is the simulated decision for one action.
type Result struct {
	Action   string `json:"action"`
	Decision string `json:"decision"`
	Allowed  bool   `json:"allowed"`
}

// Report is the outcome of one check.
type Report struct {
	Principal string   `json:"principal"`
	Results   []Result `json:"results"`
}

// Denied returns the actions that are not allowed.
func (r Report) Denied() []string {
	denied := make([]string, 0)
	for _, res := range r.Results {
		if !res.Allowed {
			denied = append(denied, res.Action)
		}
	}
	return denied
}

// Lines renders one "allowed|denied  action (decision)" line per action.
func (r Report) Lines() []string {
	lines := make([]string, 0, len(r.Results)+1)
	lines = append(lines, "principal: "+r.Principal)
	for _, res := range r.Results {
		mark := "allowed"
		if !res.Allowed {
			mark = "denied "
		}
		lines = append(lines, fmt.Sprintf("%s  %s (%s)", mark, res.Action, res.Decision))
	}
	return lines
}

// Checker simulates principal policies.
type Checker struct {
	iam aws.IAMClient
	sts aws.STSClient
}

// NewChecker creates a Checker. stsClient may be nil when callers always pass a principal.
func NewChecker(iamClient aws.IAMClient, stsClient aws.STSClient) *Checker {
	return &Checker{iam: iamClient, sts: stsClient}
}

// Principal returns the IAM ARN of the caller. An assumed-role session is mapped back to its
// role, since policies cannot be simulated for a session.
func (c *Checker) Principal(ctx context.Context) (string, error) {
	const op = "sts.GetCallerIdentity"
	if c.sts == nil {
		return "", apierr.Configf(op, "no principal given and no STS client available")
	}
	out, err := c.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", apierr.Classify(op, err)
	}
	if out == nil || sdkaws.ToString(out.Arn) == "" {
		return "", apierr.Shapef(op, "response has no caller ARN")
	}
	return RoleARN(*out.Arn), nil
}

// RoleARN converts arn:aws:sts::<account>:assumed-role/<role>/<session> to
// arn:aws:iam::<account>:role/<role>. Other ARNs are returned unchanged.
func RoleARN(arn string) string {
	parts := strings.SplitN(arn, ":", 6)
	if len(parts) != 6 || parts[2] != "sts" || !strings.HasPrefix(parts[5], "assumed-role/") {
		return arn
	}
	role := strings.Split(strings.TrimPrefix(parts[5], "assumed-role/"), "/")[0]
	return fmt.Sprintf("%s:%s:iam::%s:role/%s", parts[0], parts[1], parts[4], role)
}

// Check simulates actions for principalARN, discovering the caller when principalARN is empty.
// Results follow the order of actions.
func (c *Checker) Check(ctx context.Context, principalARN string, actions []string) (Report, error) {
	const op = "iam.SimulatePrincipalPolicy"
	if len(actions) == 0 {
		return Report{}, apierr.Configf(op, "no actions to check")
	}
	if principalARN == "" {
		p, err := c.Principal(ctx)
		if err != nil {
			return Report{}, err
		}
		principalARN = p
	}

	decisions := make(map[string]string, len(actions))
	var marker *string
	for {
		out, err := c.iam.SimulatePrincipalPolicy(ctx, &iam.SimulatePrincipalPolicyInput{
			PolicySourceArn: sdkaws.String(principalARN),
			ActionNames:     actions,
			Marker:          marker,
		})
		if err != nil {
			return Report{}, apierr.Classify(op, err)
		}
		for _, r := range out.EvaluationResults {
			decisions[sdkaws.ToString(r.EvalActionName)] = string(r.EvalDecision)
		}
		if !out.IsTruncated || out.Marker == nil {
			break
		}
		marker = out.Marker
	}

	report := Report{Principal: principalARN, Results: make([]Result, 0, len(actions))}
	for _, a := range actions {
		d, ok := decisions[a]
		if !ok {
			return Report{}, apierr.Shapef(op, "no evaluation result for %s", a)
		}
		report.Results = append(report.Results, Result{
			Action:   a,
			Decision: d,
			Allowed:  d == string(types.PolicyEvaluationDecisionTypeAllowed),
		})
	}
	return report, nil
}
