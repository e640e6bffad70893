// Package config loads per-survey presentation settings from surveys.yaml
// and can auto-detect them from a raw document when a survey has not been
// configured yet.
package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// SurveyConfig describes how one survey is titled, scaled, and phrased on
// the dashboard.
type SurveyConfig struct {
	ID                string         `yaml:"id"`
	Title             string         `yaml:"title"`
	Slug              string         `yaml:"slug"`
	Audience          string         `yaml:"audience"`
	SubtitleTemplate  string         `yaml:"subtitle_template"`
	ScaleDescription  string         `yaml:"scale_description"`
	ScaleLabels       map[int]string `yaml:"scale_labels"`
	PositiveThreshold int            `yaml:"positive_threshold"`
	NegativeThreshold int            `yaml:"negative_threshold"`
	SurveyTool        string         `yaml:"survey_tool"`
}

// SortedScaleKeys returns the scale's rating values in ascending order.
func (c *SurveyConfig) SortedScaleKeys() []int {
	keys := make([]int, 0, len(c.ScaleLabels))
	for k := range c.ScaleLabels {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// ScaleMax returns the highest rating value, defaulting to 5.
func (c *SurveyConfig) ScaleMax() int {
	keys := c.SortedScaleKeys()
	if len(keys) == 0 {
		return 5
	}
	return keys[len(keys)-1]
}

// File is the surveys.yaml document.
type File struct {
	Surveys []SurveyConfig `yaml:"surveys"`
}

// Load reads surveys.yaml. A missing file is not an error; it returns an
// empty File so callers can fall back to auto-detection.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &File{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &f, nil
}

// FindByID returns the configured survey with the given id, or nil.
func (f *File) FindByID(id string) *SurveyConfig {
	for i := range f.Surveys {
		if f.Surveys[i].ID == id {
			return &f.Surveys[i]
		}
	}
	return nil
}

// FindBySlug returns the configured survey with the given slug, or nil.
func (f *File) FindBySlug(slug string) *SurveyConfig {
	for i := range f.Surveys {
		if f.Surveys[i].Slug == slug {
			return &f.Surveys[i]
		}
	}
	return nil
}
