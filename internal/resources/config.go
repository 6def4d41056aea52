// Package resources implements the configuration driven list/create/edit/delete controller
// used for every reference-data collection.
package resources

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

type FieldSpec struct {
	Name     string `validate:"required"`
	Label    string
	Required bool
	// Derived fields are filled from the primary field by ResourceConfig.DeriveSecondary.
	Derived bool
}

func (f FieldSpec) DisplayName() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// ResourceConfig describes one REST collection. The first field is the primary one.
type ResourceConfig struct {
	Endpoint        string      `validate:"required,startswith=/,endswith=/"`
	ItemName        string      `validate:"required"`
	Fields          []FieldSpec `validate:"required,min=1,dive"`
	DeriveSecondary func(primary string) string
}

func (c ResourceConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if c.Fields[0].Derived {
		return errors.Errorf("%s: primary field %q can't be derived", c.ItemName, c.Fields[0].Name)
	}

	names := c.FieldNames()
	if dup := lo.FindDuplicates(names); len(dup) > 0 {
		return errors.Errorf("%s: duplicate fields %v", c.ItemName, dup)
	}

	if c.DeriveSecondary == nil && lo.SomeBy(c.Fields, func(f FieldSpec) bool { return f.Derived }) {
		return errors.Errorf("%s: derived fields need DeriveSecondary", c.ItemName)
	}
	return nil
}

func (c ResourceConfig) Primary() FieldSpec {
	return c.Fields[0]
}

func (c ResourceConfig) FieldNames() []string {
	return lo.Map(c.Fields, func(f FieldSpec, _ int) string { return f.Name })
}

func (c ResourceConfig) Field(name string) (FieldSpec, bool) {
	return lo.Find(c.Fields, func(f FieldSpec) bool { return f.Name == name })
}
