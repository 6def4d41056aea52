package resources

import (
	"github.com/samber/lo"
	"sort"
)

// namedOption is a collection of labels with a slug derived from the label.
func namedOption(endpoint, itemName, field string) ResourceConfig {
	return ResourceConfig{
		Endpoint: endpoint,
		ItemName: itemName,
		Fields: []FieldSpec{
			{Name: field, Label: itemName, Required: true},
			{Name: "codename", Label: "Codename", Required: true, Derived: true},
		},
		DeriveSecondary: GenerateCodename,
	}
}

// Catalog lists the reference-data collections managed by the agent, keyed by resource name.
func Catalog() map[string]ResourceConfig {
	return map[string]ResourceConfig{
		"skills":         namedOption("/options/skills/", "Skill", "skill"),
		"salary-ranges":  namedOption("/options/salary-ranges/", "Salary Range", "salary_range"),
		"job-types":      namedOption("/options/job-types/", "Job Type", "job_type"),
		"contract-types": namedOption("/options/contract-types/", "Contract Type", "contract_type"),
		"levels":         namedOption("/options/levels/", "Level", "level"),
	}
}

func CatalogNames() []string {
	names := lo.Keys(Catalog())
	sort.Strings(names)
	return names
}
