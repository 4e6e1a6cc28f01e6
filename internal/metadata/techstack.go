package metadata

import (
	"os"
	"path/filepath"
	"slices"
)

type marker struct {
	file string
	tech string
}

// markers is checked in order; a tech is reported once
var markers = []marker{
	{"Cargo.toml", "Rust"},
	{"CMakeLists.txt", "C"},
	{"CMakeLists.txt", "C++"},
	{"meson.build", "C"},
	{"build.zig", "Zig"},
	{"pom.xml", "Java"},
	{"build.gradle", "Java"},
	{"build.gradle.kts", "Kotlin"},
	{"build.sbt", "Scala"},
	{"project.clj", "Clojure"},
	{"package.json", "JavaScript"},
	{"tsconfig.json", "TypeScript"},
	{"deno.json", "Deno"},
	{"bun.lockb", "Bun"},
	{"pyproject.toml", "Python"},
	{"requirements.txt", "Python"},
	{"setup.py", "Python"},
	{"Pipfile", "Python"},
	{"go.mod", "Go"},
	{"Gemfile", "Ruby"},
	{"composer.json", "PHP"},
	{"mix.exs", "Elixir"},
	{"rebar.config", "Erlang"},
	{"stack.yaml", "Haskell"},
	{"dune-project", "OCaml"},
	{"Package.swift", "Swift"},
	{"Podfile", "iOS"},
	{"build.gradle", "Android"},
	{"Dockerfile", "Docker"},
	{"docker-compose.yml", "Docker"},
	{"docker-compose.yaml", "Docker"},
	{"terraform.tf", "Terraform"},
	{"main.tf", "Terraform"},
	{"serverless.yml", "Serverless"},
	{"pulumi.yaml", "Pulumi"},
	{"kubernetes.yaml", "Kubernetes"},
	{"next.config.js", "Next.js"},
	{"next.config.mjs", "Next.js"},
	{"nuxt.config.ts", "Nuxt"},
	{"vite.config.ts", "Vite"},
	{"astro.config.mjs", "Astro"},
	{"svelte.config.js", "Svelte"},
	{"angular.json", "Angular"},
	{"tailwind.config.js", "Tailwind"},
	{"tailwind.config.ts", "Tailwind"},
	{"dbt_project.yml", "dbt"},
	{"Makefile", "Make"},
	{"justfile", "Just"},
	{"Taskfile.yml", "Task"},
}

var extensionTech = map[string]string{
	".rs":     "Rust",
	".ts":     "TypeScript",
	".tsx":    "TypeScript",
	".js":     "JavaScript",
	".jsx":    "JavaScript",
	".py":     "Python",
	".go":     "Go",
	".java":   "Java",
	".kt":     "Kotlin",
	".scala":  "Scala",
	".rb":     "Ruby",
	".php":    "PHP",
	".ex":     "Elixir",
	".exs":    "Elixir",
	".hs":     "Haskell",
	".ml":     "OCaml",
	".swift":  "Swift",
	".cs":     "C#",
	".fs":     "F#",
	".c":      "C",
	".cpp":    "C++",
	".cc":     "C++",
	".zig":    "Zig",
	".lua":    "Lua",
	".clj":    "Clojure",
	".erl":    "Erlang",
	".tf":     "Terraform",
	".vue":    "Vue",
	".svelte": "Svelte",
}

var (
	extensionDirs = []string{"", "src", "lib", "app"}

	backendTechs  = []string{"Scala", "Java", "Kotlin", "Go", "Rust", "Python", "Ruby", "PHP", "Elixir", "C#", "F#"}
	frontendTechs = []string{"Next.js", "Nuxt", "Vite", "Astro", "Svelte", "Angular", "Vue", "Tailwind"}
	infraTechs    = []string{"Docker", "Kubernetes", "Terraform", "Pulumi"}
)

const extensionSampleSize = 30

// DetectTechStack lists technologies from marker files, then from the
// extensions of the first entries of the root and common source dirs.
func DetectTechStack(root string) []string {
	var stack []string
	add := func(tech string) {
		if !slices.Contains(stack, tech) {
			stack = append(stack, tech)
		}
	}

	for _, m := range markers {
		if _, err := os.Stat(filepath.Join(root, m.file)); err == nil {
			add(m.tech)
		}
	}

	for _, dir := range extensionDirs {
		entries, err := os.ReadDir(filepath.Join(root, dir))
		if err != nil {
			continue
		}
		if len(entries) > extensionSampleSize {
			entries = entries[:extensionSampleSize]
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if tech, ok := extensionTech[filepath.Ext(entry.Name())]; ok {
				add(tech)
			}
		}
	}

	return stack
}

// SemanticHints maps a tech stack onto coarse project kinds.
func SemanticHints(stack []string) []string {
	has := func(set []string) bool {
		for _, tech := range stack {
			if slices.Contains(set, tech) {
				return true
			}
		}
		return false
	}

	backend := has(backendTechs)
	jsOnly := has([]string{"JavaScript", "TypeScript"}) && !backend

	var hints []string
	if has(frontendTechs) || jsOnly {
		hints = append(hints, "frontend", "web", "UI")
	}
	if backend {
		hints = append(hints, "backend", "server", "API")
	}
	if has(infraTechs) {
		hints = append(hints, "infrastructure", "devops")
	}
	return hints
}
