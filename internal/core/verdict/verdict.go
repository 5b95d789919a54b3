// Package verdict turns free-form model output into a structurally valid detection verdict
//
// Every function here is total: malformed, partial, or hostile input still yields
// a verdict whose probabilities are integers in [0,100] summing to 100.
package verdict

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"vera/internal/core/media"

	"golang.org/x/text/cases"
)

// NotAvailable is the placeholder for reasoning sections the model left out
const NotAvailable = "not available"

// UncertainOverall explains an uncertain verdict produced from unparseable output
const UncertainOverall = "Model did not return strict JSON as requested. See raw_model_output for details."

// Reasoning is the four-part explanation attached to a verdict
type Reasoning struct {
	ContentAnalysis     string `json:"content_analysis"`
	DeepfakeIndicators  string `json:"deepfake_indicators"`
	AuthenticIndicators string `json:"authentic_indicators"`
	Overall             string `json:"overall"`
}

// Verdict is the normalized detection result
// DeepfakeProbability + NaturalProbability == 100 always
type Verdict struct {
	MediaType           media.Kind `json:"media_type" example:"image"`
	DeepfakeProbability int        `json:"deepfake_probability" example:"12"`
	NaturalProbability  int        `json:"natural_probability" example:"88"`
	Reasoning           Reasoning  `json:"reasoning"`
}

// ExtractJSON finds a JSON object embedded in text
// it tries the span from the first '{' to the last '}', then the whole text
// returns nil when neither parses to an object
func ExtractJSON(text string) map[string]any {
	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first >= 0 && last > first {
		if m := decodeObject(text[first : last+1]); m != nil {
			return m
		}
	}
	return decodeObject(text)
}

func decodeObject(s string) map[string]any {
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil
	}
	return m
}

var fold = cases.Fold()

// Normalize repairs a parsed model answer into a Verdict
// hint is the media kind the caller resolved before invoking the model
func Normalize(parsed map[string]any, hint media.Kind) Verdict {
	df, dfOK := number(parsed["deepfake_probability"])
	nat, natOK := number(parsed["natural_probability"])

	// deepfake wins; natural is always recomputed from it
	switch {
	case dfOK:
	case natOK:
		df = 100 - nat
	default:
		df = 0
	}

	// clamp as float; converting an out-of-range float to int is undefined
	d := int(clamp(jsRound(df), 0, 100))
	n := 100 - d

	return Verdict{
		MediaType:           mediaType(parsed["media_type"], hint),
		DeepfakeProbability: d,
		NaturalProbability:  n,
		Reasoning:           reasoning(parsed["reasoning"]),
	}
}

// Uncertain is the verdict served when the model output held no JSON object
func Uncertain(hint media.Kind) Verdict {
	k := hint
	if !k.Valid() {
		k = media.Unknown
	}
	return Verdict{
		MediaType:           k,
		DeepfakeProbability: 0,
		NaturalProbability:  100,
		Reasoning: Reasoning{
			ContentAnalysis:     NotAvailable,
			DeepfakeIndicators:  NotAvailable,
			AuthenticIndicators: NotAvailable,
			Overall:             UncertainOverall,
		},
	}
}

// number coerces a decoded JSON value into a finite float
// numeric strings count, everything else is treated as missing
func number(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case json.Number:
		p, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = p
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// jsRound rounds half toward positive infinity
func jsRound(f float64) float64 { return math.Floor(f + 0.5) }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func mediaType(v any, hint media.Kind) media.Kind {
	raw, _ := v.(string)
	if raw == "" {
		raw = string(hint)
	}
	if raw == "" {
		raw = string(media.Unknown)
	}
	if k := media.Kind(fold.String(raw)); k.Valid() {
		return k
	}
	if hint.Valid() {
		return hint
	}
	return media.Unknown
}

func reasoning(v any) Reasoning {
	m, _ := v.(map[string]any)
	return Reasoning{
		ContentAnalysis:     field(m, "content_analysis"),
		DeepfakeIndicators:  field(m, "deepfake_indicators"),
		AuthenticIndicators: field(m, "authentic_indicators"),
		Overall:             field(m, "overall"),
	}
}

func field(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok {
		return NotAvailable
	}
	return stringify(v)
}

// stringify renders any decoded JSON value as text
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return NotAvailable
		}
		return string(b)
	}
}
