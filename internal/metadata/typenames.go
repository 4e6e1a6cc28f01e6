package metadata

import (
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"unicode"
)

const (
	typeScanMaxDepth = 8
	typeScanFiles    = 10
	typeScanBytes    = 50000
	maxTypeNames     = 15
	minTypeNameLen   = 4
)

var genericTypes = toSet(
	"App", "Main", "Application", "Program",
	"Config", "Configuration", "Options", "Settings", "Properties",
	"Utils", "Util", "Helper", "Helpers", "Common",
	"Handler", "Manager", "Service", "Factory", "Builder", "Provider",
	"Context", "State", "Store", "Cache",
	"Error", "Exception", "Result",
	"Test", "Tests", "Spec", "Mock",
	"Base", "Abstract", "Default", "Simple", "Basic", "Impl", "Implementation",
)

var typePatterns = map[string][]*regexp.Regexp{
	"java":  jvmPatterns,
	"kt":    jvmPatterns,
	"scala": jvmPatterns,
	"rs": {
		regexp.MustCompile(`pub\s+struct\s+(\w+)`),
		regexp.MustCompile(`pub\s+enum\s+(\w+)`),
		regexp.MustCompile(`pub\s+trait\s+(\w+)`),
	},
	"ts": jsPatterns,
	"js": jsPatterns,
	"go": {
		regexp.MustCompile(`type\s+([A-Z]\w+)\s+struct`),
		regexp.MustCompile(`type\s+([A-Z]\w+)\s+interface`),
	},
	"py": {
		regexp.MustCompile(`class\s+(\w+)`),
	},
	"cs": {
		regexp.MustCompile(`public\s+(?:class|interface|enum|struct|record)\s+(\w+)`),
	},
}

var jvmPatterns = []*regexp.Regexp{
	regexp.MustCompile(`public\s+(?:class|interface|enum|record)\s+(\w+)`),
	regexp.MustCompile(`class\s+(\w+)`),
}

var jsPatterns = []*regexp.Regexp{
	regexp.MustCompile(`export\s+(?:class|interface|type|enum)\s+(\w+)`),
	regexp.MustCompile(`class\s+(\w+)`),
}

// skippedSourcePaths mark tests, generated code and dependencies
var skippedSourcePaths = []string{
	"/test/", "/tests/", "/spec/", "_test.", ".test.",
	"node_modules", "/target/", "/build/", "/dist/",
	"/vendor/", "/generated/", "/.git/",
}

type sourceFile struct {
	path string
	ext  string
	size int64
}

func (e *Extractor) typeNames(root string) []string {
	files := largestSourceFiles(root)

	seen := make(map[string]bool)
	for _, f := range files {
		src, err := readPrefix(f.path, typeScanBytes)
		if err != nil {
			e.logger.Debug("skipping unreadable source file", "path", f.path, "error", err)
			continue
		}

		for _, name := range declaredTypes(f.ext, src) {
			if isDistinctiveType(name) {
				seen[name] = true
			}
		}
	}

	return sortedCapped(seen, maxTypeNames)
}

// largestSourceFiles returns the biggest recognized source files under root
func largestSourceFiles(root string) []sourceFile {
	var files []sourceFile

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, _ := filepath.Rel(root, path)
		rel = "/" + filepath.ToSlash(rel)
		if d.IsDir() {
			if path == root {
				return nil
			}
			if d.Name() == ".git" || d.Name() == "node_modules" || depth(root, path) >= typeScanMaxDepth {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || isSkippedSource(rel) {
			return nil
		}

		ext := strings.TrimPrefix(filepath.Ext(path), ".")
		if _, ok := typePatterns[ext]; !ok {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		files = append(files, sourceFile{path: path, ext: ext, size: info.Size()})
		return nil
	})

	slices.SortStableFunc(files, func(a, b sourceFile) int {
		switch {
		case a.size > b.size:
			return -1
		case a.size < b.size:
			return 1
		default:
			return strings.Compare(a.path, b.path)
		}
	})
	if len(files) > typeScanFiles {
		files = files[:typeScanFiles]
	}
	return files
}

func isSkippedSource(rel string) bool {
	for _, pattern := range skippedSourcePaths {
		if strings.Contains(rel, pattern) {
			return true
		}
	}
	return false
}

func readPrefix(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	return io.ReadAll(io.LimitReader(f, limit))
}

// declaredTypes lists the type names declared in src
func declaredTypes(ext string, src []byte) []string {
	if ext == "go" {
		if names, err := goTypes(src); err == nil {
			return names
		}
	}

	var names []string
	for _, re := range typePatterns[ext] {
		for _, m := range re.FindAllSubmatch(src, -1) {
			names = append(names, string(m[1]))
		}
	}
	return names
}

// goTypes collects exported struct and interface declarations
func goTypes(src []byte) ([]string, error) {
	file, err := parser.ParseFile(token.NewFileSet(), "", src, parser.SkipObjectResolution)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok || !ts.Name.IsExported() {
				continue
			}
			switch ts.Type.(type) {
			case *ast.StructType, *ast.InterfaceType:
				names = append(names, ts.Name.Name)
			}
		}
	}
	return names, nil
}

func isDistinctiveType(name string) bool {
	if len(name) < minTypeNameLen || genericTypes[name] {
		return false
	}
	first := []rune(name)[0]
	return unicode.IsUpper(first)
}
