package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func GenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gen",
		Short: "Generate Go code from .templ files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen()
		},
	}
}

func runGen() error {
	if skipTempl() {
		fmt.Println("[templ] skipped")
		return nil
	}

	start := time.Now()
	gen := exec.Command("go", "tool", "templ", "generate", "-path", "internal/ui")
	gen.Stdout = os.Stdout
	gen.Stderr = os.Stderr
	if err := gen.Run(); err != nil {
		return fmt.Errorf("templ: %w", err)
	}

	fmt.Printf("[templ] done (%s)\n", time.Since(start).Round(time.Millisecond))
	return nil
}

// skipTempl reports whether every .templ file is older than its generated Go.
func skipTempl() bool {
	var templFiles []string
	_ = filepath.WalkDir("internal/ui", func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".templ") {
			templFiles = append(templFiles, path)
		}
		return nil
	})

	for _, templFile := range templFiles {
		outFile := strings.TrimSuffix(templFile, ".templ") + "_templ.go"
		if !isUpToDate(outFile, templFile) {
			return false
		}
	}
	return true
}

func isUpToDate(output, input string) bool {
	outInfo, err := os.Stat(output)
	if err != nil {
		return false
	}
	inInfo, err := os.Stat(input)
	if err != nil {
		return true
	}
	return !inInfo.ModTime().After(outInfo.ModTime())
}
