// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"io/fs"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// maxIaCFiles caps the files listed per IaC directory.
const maxIaCFiles = 20

type (
	// IaCEntry is one detected infrastructure-as-code marker.
	IaCEntry struct {
		Type      string   `json:"type"`
		Directory string   `json:"directory"`
		Files     []string `json:"files"`
		// Services lists compose service names; only set for compose files.
		Services []string `json:"services,omitempty"`
	}

	iacDirMarker struct {
		dir     string
		label   string
		pattern string
	}

	iacFileMarker struct {
		file  string
		label string
	}
)

var (
	iacDirMarkers = []iacDirMarker{
		{"terraform", "Terraform", "*.tf"},
		{"cdk", "AWS CDK", "*.ts"},
		{"cloudformation", "CloudFormation", "*.yml"},
		{"kubernetes", "Kubernetes", "*.yml"},
		{"k8s", "Kubernetes", "*.yml"},
		{"helm", "Helm", "*.yaml"},
		{"pulumi", "Pulumi", "*.*"},
	}

	iacFileMarkers = []iacFileMarker{
		{"docker-compose.yml", composeLabel},
		{"docker-compose.yaml", composeLabel},
		{"Dockerfile", "Docker"},
		{"serverless.yml", "Serverless Framework"},
		{"serverless.yaml", "Serverless Framework"},
		{"template.yaml", "SAM"},
		{"template.yml", "SAM"},
		{"samconfig.toml", "SAM"},
	}
)

const composeLabel = "Docker Compose"

func (d *discoverer) iac() []IaCEntry {
	entries := make([]IaCEntry, 0)

	for _, marker := range iacDirMarkers {
		if !d.isDir(marker.dir) {
			continue
		}
		entries = append(entries, IaCEntry{
			Type:      marker.label,
			Directory: marker.dir,
			Files:     d.iacFiles(marker.dir, marker.pattern),
		})
	}

	for _, marker := range iacFileMarkers {
		if !d.isFile(marker.file) {
			continue
		}
		entry := IaCEntry{Type: marker.label, Directory: ".", Files: []string{marker.file}}
		if marker.label == composeLabel {
			entry.Services = d.composeServices(marker.file)
		}
		entries = append(entries, entry)
	}

	return entries
}

// iacFiles lists regular files directly inside dir that match pattern,
// sorted and capped at maxIaCFiles.
func (d *discoverer) iacFiles(dir, pattern string) []string {
	matches, err := doublestar.Glob(d.fsys, dir+"/"+pattern, doublestar.WithFilesOnly())
	if err != nil {
		d.diags.warn("iac_glob_failed", dir, err, "IaC directory could not be listed")
		return []string{}
	}
	slices.Sort(matches)
	if len(matches) > maxIaCFiles {
		d.diags.info("iac_files_truncated", dir, "IaC file list truncated")
		matches = matches[:maxIaCFiles]
	}
	if matches == nil {
		return []string{}
	}
	return matches
}

// composeServices returns the sorted top-level service names of a compose file.
func (d *discoverer) composeServices(rel string) []string {
	data, err := fs.ReadFile(d.fsys, rel)
	if err != nil {
		d.diags.warn("compose_read_skipped", rel, err, "compose file could not be read")
		return nil
	}

	var doc struct {
		Services map[string]yaml.Node `yaml:"services"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		d.diags.warn("compose_parse_skipped", rel, err, "compose file is not valid YAML")
		return nil
	}

	names := make([]string, 0, len(doc.Services))
	for name := range doc.Services {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
