package resources

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Challenge is one exercise inside a block.
type Challenge struct {
	ID            string   `json:"_id"`
	Name          string   `json:"name"`
	ChallengeType int      `json:"challengeType"`
	Description   []string `json:"description,omitempty"`
}

// ChallengeBlock is one seed file of challenges.
type ChallengeBlock struct {
	Name       string      `json:"name"`
	Order      int         `json:"order"`
	Challenges []Challenge `json:"challenges"`
}

type FieldGuide struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	DashedName  string   `json:"dashedName"`
	Description []string `json:"description,omitempty"`
}

type Nonprofit struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// Phrases are the words the site picks from at random.
type Phrases struct {
	Phrases     []string `json:"phrases"`
	Verbs       []string `json:"verbs"`
	Compliments []string `json:"compliments"`
}

// Loader reads the seed content an Index is built from.
type Loader interface {
	LoadChallengeBlocks() ([]ChallengeBlock, error)
	LoadFieldGuides() ([]FieldGuide, error)
	LoadNonprofits() ([]Nonprofit, error)
	LoadPhrases() (*Phrases, error)
}

// DirLoader reads seed content from a directory laid out as
//
//	challenges/*.json
//	field-guides.json
//	nonprofits.json
//	resources.json
type DirLoader struct {
	Dir string
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("Could not read seed file: %s", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("Could not parse seed file %s: %s", path, err)
	}
	return nil
}

func (l *DirLoader) LoadChallengeBlocks() ([]ChallengeBlock, error) {
	files, err := filepath.Glob(filepath.Join(l.Dir, "challenges", "*.json"))
	if err != nil {
		return nil, err
	}
	blocks := make([]ChallengeBlock, 0, len(files))
	for _, f := range files {
		var b ChallengeBlock
		if err := readJSON(f, &b); err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func (l *DirLoader) LoadFieldGuides() ([]FieldGuide, error) {
	var guides []FieldGuide
	err := readJSON(filepath.Join(l.Dir, "field-guides.json"), &guides)
	return guides, err
}

func (l *DirLoader) LoadNonprofits() ([]Nonprofit, error) {
	var nonprofits []Nonprofit
	err := readJSON(filepath.Join(l.Dir, "nonprofits.json"), &nonprofits)
	return nonprofits, err
}

func (l *DirLoader) LoadPhrases() (*Phrases, error) {
	p := &Phrases{}
	if err := readJSON(filepath.Join(l.Dir, "resources.json"), p); err != nil {
		return nil, err
	}
	return p, nil
}
