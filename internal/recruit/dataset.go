package recruit

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Dataset is the candidate and job pool handed over by the ingestion side.
type Dataset struct {
	Candidates *Candidates
	Jobs       *Jobs
}

type rawDataset struct {
	Candidates []any `json:"candidates"`
	Jobs       []any `json:"jobs"`
}

var leadingNumber = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)`)

// LoadDataset reads a JSON file with "candidates" and "jobs" arrays.
func LoadDataset(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset %q: %w", path, err)
	}

	var raw rawDataset
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing dataset %q: %w", path, err)
	}

	candidates, err := DecodeCandidates(raw.Candidates)
	if err != nil {
		return nil, err
	}

	jobs, err := DecodeJobs(raw.Jobs)
	if err != nil {
		return nil, err
	}

	return &Dataset{Candidates: candidates, Jobs: jobs}, nil
}

// DecodeCandidates decodes loosely typed records. Numeric ids become strings,
// "7 years" becomes 7 and comma separated skills are split.
func DecodeCandidates(items []any) (*Candidates, error) {
	var candidates []*Candidate
	if err := decode(items, &candidates); err != nil {
		return nil, fmt.Errorf("decoding candidates: %w", err)
	}
	for _, c := range candidates {
		c.ID = strings.TrimSpace(c.ID)
		c.Skills = cleanTags(c.Skills)
	}
	return &Candidates{Items: candidates}, nil
}

// DecodeJobs decodes loosely typed job records. "5+ years" becomes 5.
func DecodeJobs(items []any) (*Jobs, error) {
	var jobs []*Job
	if err := decode(items, &jobs); err != nil {
		return nil, fmt.Errorf("decoding jobs: %w", err)
	}
	for _, j := range jobs {
		j.ID = strings.TrimSpace(j.ID)
		j.RequiredSkills = cleanTags(j.RequiredSkills)
	}
	return &Jobs{Items: jobs}, nil
}

func decode(items []any, result any) error {
	cfg := &mapstructure.DecoderConfig{
		Result:           result,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			yearsHook,
			mapstructure.StringToSliceHookFunc(","),
		),
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}
	return decoder.Decode(items)
}

// yearsHook turns free-text durations such as "7 years" or "5+ years" into a number.
func yearsHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Float64 {
		return data, nil
	}

	s := strings.TrimSpace(data.(string))
	if s == "" {
		return 0.0, nil
	}

	m := leadingNumber.FindStringSubmatch(s)
	if m == nil {
		return nil, Invalid("experience", "cannot read years from %q", s)
	}

	return strconv.ParseFloat(m[1], 64)
}

func cleanTags(tags []string) []string {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			cleaned = append(cleaned, tag)
		}
	}
	return cleaned
}
