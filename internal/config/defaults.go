// SPDX-License-Identifier: MPL-2.0

package config

import "github.com/spf13/viper"

// Names of the default documents.
const (
	DocOverview  = "overview"
	DocBusiness  = "business"
	DocTechnical = "technical"

	// DefaultFreshnessDays is the default maximum age of a "Last verified" date.
	DefaultFreshnessDays = 30
)

// DefaultConfig returns the configuration for the reference serverless layout.
func DefaultConfig() *Config {
	return &Config{
		Root: ".",
		Documents: []Document{
			{Name: DocOverview, Path: "docs/specification/01_overview.md"},
			{Name: DocBusiness, Path: "docs/specification/02_business_spec.md"},
			{Name: DocTechnical, Path: "docs/specification/03_technical_spec.md"},
		},
		Categories: []Category{
			{
				Name: "Lambda functions",
				Code: CodeSource{Kind: CodeKindDirs, Path: "lambda_functions", Ignore: []string{"__pycache__"}},
				Spec: SpecSource{
					Document: DocOverview,
					Sections: []Section{
						{Start: `####\s+API\s+Endpoint\s+Integration`, Stop: `####\s+Monthly\s+Rank\s+Batch`},
						{Start: `####\s+Monthly\s+Rank\s+Batch`, Stop: `###\s+3\.2`},
					},
				},
				Coverage: true,
			},
			{
				Name: "Shared modules",
				Code: CodeSource{Kind: CodeKindFiles, Path: "lambda_layer/python", Glob: "*.py", Ignore: []string{"__init__.py"}},
				Spec: SpecSource{
					Document: DocOverview,
					Sections: []Section{{Start: `###\s+3\.2\s+Shared\s+Layer\s+Modules`, Stop: `###\s+3\.3`}},
				},
				Coverage: true,
			},
			{
				Name: "DynamoDB tables",
				Code: CodeSource{Kind: CodeKindResources, Path: "terraform/dynamodb.tf", ResourceType: "aws_dynamodb_table"},
				Spec: SpecSource{
					Document: DocOverview,
					Sections: []Section{{Start: `###\s+3\.3\s+DynamoDB`, Stop: `###\s+3\.4`}},
				},
			},
			{
				Name: "API routes",
				Code: CodeSource{Kind: CodeKindResources, Path: "terraform/api_gateway.tf", ResourceType: "aws_apigatewayv2_route"},
				Spec: SpecSource{Document: DocTechnical, Pattern: `###\s+1\.\d+\s+(?:POST|GET)\s+/`},
			},
		},
		Coverage:  CoverageConfig{Documents: []string{DocTechnical, DocOverview}},
		Freshness: FreshnessConfig{Days: DefaultFreshnessDays},
	}
}

func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()
	v.SetDefault("root", defaults.Root)
	v.SetDefault("documents", defaults.Documents)
	v.SetDefault("categories", defaults.Categories)
	v.SetDefault("coverage.documents", defaults.Coverage.Documents)
	v.SetDefault("coverage.label", defaults.Coverage.Label)
	v.SetDefault("freshness.days", defaults.Freshness.Days)
	v.SetDefault("freshness.documents", defaults.Freshness.Documents)
}
