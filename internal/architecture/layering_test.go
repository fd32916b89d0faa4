package architecture_test

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const modulesPrefix = "dokureader/internal/modules/"

type goImport struct {
	file string
	path string
}

// walkImports lists the non-test imports of every Go file under root.
func walkImports(t *testing.T, root string) []goImport {
	t.Helper()
	fset := token.NewFileSet()
	var out []goImport
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		node, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, imp := range node.Imports {
			out = append(out, goImport{file: filepath.ToSlash(path), path: strings.Trim(imp.Path.Value, `"`)})
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", root, err)
	}
	return out
}

func TestHexagonalLayerImports(t *testing.T) {
	t.Parallel()
	for _, imp := range walkImports(t, filepath.Join("..", "modules")) {
		if !strings.HasPrefix(imp.path, modulesPrefix) {
			continue
		}
		module, layer := moduleName(imp.file), detectLayer(imp.file)
		if module == "" || layer == "" {
			continue
		}
		if violatesLayerRule(module, layer, imp.path) {
			t.Fatalf("forbidden import in %s (%s): %s", imp.file, layer, imp.path)
		}
	}
}

func TestPlatformDoesNotImportModules(t *testing.T) {
	t.Parallel()
	for _, imp := range walkImports(t, filepath.Join("..", "platform")) {
		if strings.HasPrefix(imp.path, modulesPrefix) {
			t.Fatalf("platform package %s imports module %s", imp.file, imp.path)
		}
	}
}

func TestCommandsGoThroughBootstrap(t *testing.T) {
	t.Parallel()
	for _, imp := range walkImports(t, filepath.Join("..", "..", "cmd")) {
		if strings.HasPrefix(imp.path, modulesPrefix) && !isDTO(imp.path) {
			t.Fatalf("%s imports %s; commands use bootstrap handlers", imp.file, imp.path)
		}
	}
}

func moduleName(path string) string {
	parts := strings.Split(path, "/")
	for i := 0; i < len(parts)-1; i++ {
		if parts[i] == "modules" {
			return parts[i+1]
		}
	}
	return ""
}

func detectLayer(path string) string {
	for _, layer := range []string{"adapter/in", "adapter/out", "usecase", "service", "domain", "port/in", "port/out", "dto"} {
		if strings.Contains(path, "/"+layer+"/") {
			return layer
		}
	}
	return ""
}

func isPortIn(path string) bool {
	return strings.Contains(path, "/port/in/") || strings.HasSuffix(path, "/port/in")
}

func isDTO(path string) bool {
	return strings.Contains(path, "/dto/") || strings.HasSuffix(path, "/dto")
}

// violatesLayerRule: other modules are reachable only through port/in and
// dto; inside a module dependencies point inward.
func violatesLayerRule(module, layer, importPath string) bool {
	if !strings.HasPrefix(importPath, modulesPrefix+module+"/") {
		return !isPortIn(importPath) && !isDTO(importPath)
	}

	switch layer {
	case "adapter/in":
		return !isPortIn(importPath) && !isDTO(importPath)
	case "usecase":
		return strings.Contains(importPath, "/adapter/")
	case "service":
		return strings.Contains(importPath, "/adapter/") || strings.Contains(importPath, "/usecase/")
	case "domain":
		return strings.Contains(importPath, "/adapter/") || strings.Contains(importPath, "/usecase/") || strings.Contains(importPath, "/service/")
	case "port/in", "port/out", "dto":
		return strings.Contains(importPath, "/adapter/") || strings.Contains(importPath, "/usecase/") || strings.Contains(importPath, "/service/")
	default:
		return false
	}
}
