package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"q.log/gomory/model"
)

var ErrUnsupportedFormat = errors.New("instance: unsupported file format")

// File is the YAML layout of a problem:
//
//	name: workshop
//	num_vars: 2
//	integer: true
//	objective:
//	  direction: maximize
//	  expression: 8x_1 + 6x_2
//	constraints:
//	  - 2x_1 + 5x_2 <= 19
//	  - 4x_1 + 1x_2 <= 16
type File struct {
	Name        string   `yaml:"name"`
	NumVars     int      `yaml:"num_vars"    validate:"required,min=1"`
	Integer     *bool    `yaml:"integer"`
	Constraints []string `yaml:"constraints" validate:"dive,required"`
	Objective   struct {
		Direction  string `yaml:"direction"  validate:"required,oneof=min max minimize maximize minimise maximise"`
		Expression string `yaml:"expression" validate:"required"`
	} `yaml:"objective"`
}

// Instance is a loaded problem and whether its variables must be integral.
type Instance struct {
	Path    string
	Problem *model.Problem
	Integer bool
}

var validate = validator.New()

type loadOptions struct {
	mpsDirection model.Direction
}

type LoadOption func(*loadOptions)

// WithMPSDirection sets the objective sense of .mps files, which carry none.
func WithMPSDirection(d model.Direction) LoadOption {
	return func(o *loadOptions) {
		o.mpsDirection = d
	}
}

// LoadFile reads a .yaml/.yml problem file or an .mps file. MPS problems are
// minimized unless WithMPSDirection says otherwise.
func LoadFile(path string, opts ...LoadOption) (*Instance, error) {
	o := loadOptions{mpsDirection: model.Minimize}
	for _, opt := range opts {
		opt(&o)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		inst, err := DecodeYAML(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		inst.Path = path
		if inst.Problem.Name == "" {
			inst.Problem.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		return inst, nil
	case ".mps":
		p, err := NewReader(path).WithDirection(o.mpsDirection).ConstructProblem()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		return &Instance{Path: path, Problem: p, Integer: true}, nil
	}
	return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
}

func DecodeYAML(data []byte) (*Instance, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	f.Objective.Direction = strings.ToLower(strings.TrimSpace(f.Objective.Direction))
	if err := validate.Struct(&f); err != nil {
		return nil, err
	}
	p, err := ParseProblem(f.NumVars, f.Constraints, f.Objective.Direction, f.Objective.Expression)
	if err != nil {
		return nil, err
	}
	p.Name = f.Name
	integer := true
	if f.Integer != nil {
		integer = *f.Integer
	}
	return &Instance{Problem: p, Integer: integer}, nil
}
