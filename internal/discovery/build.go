// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"encoding/json"
	"io/fs"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/mod/modfile"
)

type (
	// BuildMarker is one detected build-system or package-manager file.
	BuildMarker struct {
		Type string `json:"type"`
		File string `json:"file"`
		// Name is the project or module name declared by the manifest, when
		// the manifest format declares one.
		Name string `json:"name,omitempty"`
	}

	buildMarker struct {
		file  string
		label string
		name  manifestNameFunc
	}

	// manifestNameFunc extracts a declared project name from manifest bytes.
	manifestNameFunc func(data []byte) (string, error)
)

var buildMarkers = []buildMarker{
	{"Makefile", "Make", nil},
	{"package.json", "npm/Node.js", jsonManifestName},
	{"pyproject.toml", "Python (pyproject)", pyprojectName},
	{"setup.py", "Python (setuptools)", nil},
	{"setup.cfg", "Python (setuptools)", nil},
	{"requirements.txt", "Python (pip)", nil},
	{"Pipfile", "Python (pipenv)", nil},
	{"poetry.lock", "Python (poetry)", nil},
	{"uv.lock", "Python (uv)", nil},
	{"go.mod", "Go", goModuleName},
	{"Cargo.toml", "Rust", cargoName},
	{"pom.xml", "Java (Maven)", nil},
	{"build.gradle", "Java (Gradle)", nil},
	{"build.gradle.kts", "Kotlin (Gradle)", nil},
	{"Gemfile", "Ruby (Bundler)", nil},
	{"composer.json", "PHP (Composer)", jsonManifestName},
	{"CMakeLists.txt", "CMake", nil},
	{"justfile", "Just", nil},
	{"Taskfile.yml", "Task", nil},
}

func (d *discoverer) buildSystem() []BuildMarker {
	markers := make([]BuildMarker, 0)
	for _, marker := range buildMarkers {
		if !d.isFile(marker.file) {
			continue
		}
		markers = append(markers, BuildMarker{
			Type: marker.label,
			File: marker.file,
			Name: d.manifestName(marker),
		})
	}
	return markers
}

func (d *discoverer) manifestName(marker buildMarker) string {
	if marker.name == nil {
		return ""
	}
	data, err := fs.ReadFile(d.fsys, marker.file)
	if err != nil {
		d.diags.warn("manifest_read_skipped", marker.file, err, "manifest could not be read")
		return ""
	}
	name, err := marker.name(data)
	if err != nil {
		d.diags.warn("manifest_parse_skipped", marker.file, err, "manifest could not be parsed")
		return ""
	}
	return name
}

func jsonManifestName(data []byte) (string, error) {
	var manifest struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return "", err
	}
	return manifest.Name, nil
}

func pyprojectName(data []byte) (string, error) {
	var manifest struct {
		Project struct {
			Name string `toml:"name"`
		} `toml:"project"`
		Tool struct {
			Poetry struct {
				Name string `toml:"name"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return "", err
	}
	if manifest.Project.Name != "" {
		return manifest.Project.Name, nil
	}
	return manifest.Tool.Poetry.Name, nil
}

func cargoName(data []byte) (string, error) {
	var manifest struct {
		Package struct {
			Name string `toml:"name"`
		} `toml:"package"`
	}
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return "", err
	}
	return manifest.Package.Name, nil
}

func goModuleName(data []byte) (string, error) {
	return modfile.ModulePath(data), nil
}
