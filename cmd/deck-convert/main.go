// Command deck-convert batch-converts markdown slide decks with the Marp
// CLI, producing PPTX presentations, PDF handouts, and HTML versions plus a
// JSON manifest of the results.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const themeName = "amr-workshop-theme"

// commandTimeout bounds a single marp invocation.
const commandTimeout = 5 * time.Minute

// themeCSS is the presentation theme emitted next to the converted decks.
const themeCSS = `/* Antimicrobial resistance workshop theme */
@import 'default';

:root {
  --color-primary: #e53e3e;
  --color-secondary: #3182ce;
  --color-accent: #38a169;
  --color-background: #f7fafc;
  --color-text: #2d3748;
}

section {
  background-color: var(--color-background);
  color: var(--color-text);
  font-family: 'Segoe UI', -apple-system, sans-serif;
  line-height: 1.5;
}

h1 { font-size: 2.5em; color: var(--color-primary); }
h2 { font-size: 2em; color: var(--color-secondary); margin-top: 0.8em; }
h3 { font-size: 1.6em; color: var(--color-text); margin-top: 0.6em; }

section:first-of-type {
  background: linear-gradient(135deg, var(--color-primary) 0%, var(--color-secondary) 100%);
  color: white;
  text-align: center;
  justify-content: center;
}

section:first-of-type h1 { color: white; }

table { border-collapse: collapse; width: 100%; margin: 1em 0; background: white; }
th, td { border: 1px solid #e2e8f0; padding: 0.75em; text-align: left; }
th { background: var(--color-secondary); color: white; font-weight: 600; }

blockquote {
  border-left: 4px solid var(--color-accent);
  background: #f0fff4;
  padding: 1em 1em 1em 1.5em;
  margin: 1em 0;
  font-style: italic;
}

code {
  background: #f7fafc;
  border: 1px solid #e2e8f0;
  padding: 0.2em 0.4em;
  border-radius: 3px;
}

section::before {
  content: attr(data-marpit-pagination) " / " attr(data-marpit-pagination-total);
  position: absolute;
  bottom: 10px;
  left: 20px;
  font-size: 0.8em;
  opacity: 0.7;
}
`

// DeckResult records the conversion outcomes for one markdown deck.
type DeckResult struct {
	Deck string `json:"deck"`
	PPTX bool   `json:"pptx"`
	PDF  bool   `json:"pdf"`
	HTML bool   `json:"html"`
}

// Manifest summarizes a conversion run.
type Manifest struct {
	GeneratedAt time.Time    `json:"generated_at"`
	MarpVersion string       `json:"marp_version"`
	Theme       string       `json:"theme"`
	Decks       []DeckResult `json:"decks"`
	PPTXSuccess int          `json:"pptx_success"`
	PDFSuccess  int          `json:"pdf_success"`
	HTMLSuccess int          `json:"html_success"`
}

func main() {
	var (
		inputDir  = flag.String("dir", ".", "Directory containing *.md slide decks")
		outputDir = flag.String("out", "converted", "Output directory")
		skipTheme = flag.Bool("no-theme", false, "Skip emitting the workshop theme CSS")
	)
	flag.Parse()

	marpVersion, err := checkMarp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: marp CLI not found: %v\n", err)
		fmt.Fprintf(os.Stderr, "Install with: npm install -g @marp-team/marp-cli\n")
		os.Exit(1)
	}
	fmt.Printf("Using marp %s\n", marpVersion)

	decks, err := filepath.Glob(filepath.Join(*inputDir, "*.md"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing decks: %v\n", err)
		os.Exit(1)
	}
	sort.Strings(decks)
	if len(decks) == 0 {
		fmt.Fprintf(os.Stderr, "Error: no *.md decks found in %s\n", *inputDir)
		os.Exit(1)
	}
	fmt.Printf("Found %d decks in %s\n", len(decks), *inputDir)

	for _, sub := range []string{"PPTX", "PDF", "HTML"} {
		if err := os.MkdirAll(filepath.Join(*outputDir, sub), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
			os.Exit(1)
		}
	}

	themeFile := ""
	if !*skipTheme {
		themeFile = filepath.Join(*outputDir, themeName+".css")
		if err := os.WriteFile(themeFile, []byte(themeCSS), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing theme: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote theme %s\n", themeFile)
	}

	manifest := Manifest{
		GeneratedAt: time.Now(),
		MarpVersion: marpVersion,
		Theme:       themeFile,
	}

	for _, deck := range decks {
		base := strings.TrimSuffix(filepath.Base(deck), ".md")
		fmt.Printf("Converting %s\n", filepath.Base(deck))

		result := DeckResult{Deck: filepath.Base(deck)}

		pptxArgs := []string{"--allow-local-files", "--pptx", deck, "-o", filepath.Join(*outputDir, "PPTX", base+".pptx")}
		if themeFile != "" {
			pptxArgs = append([]string{"--theme", themeFile}, pptxArgs...)
		}
		result.PPTX = runMarp(pptxArgs)

		result.PDF = runMarp([]string{"--allow-local-files", "--pdf", deck, "-o", filepath.Join(*outputDir, "PDF", base+"_handout.pdf")})
		result.HTML = runMarp([]string{"--allow-local-files", deck, "-o", filepath.Join(*outputDir, "HTML", base+".html")})

		if result.PPTX {
			manifest.PPTXSuccess++
		}
		if result.PDF {
			manifest.PDFSuccess++
		}
		if result.HTML {
			manifest.HTMLSuccess++
		}
		manifest.Decks = append(manifest.Decks, result)
	}

	manifestPath := filepath.Join(*outputDir, "manifest.json")
	if err := writeManifest(manifestPath, manifest); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing manifest: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nConversion summary:\n")
	fmt.Printf("  PPTX: %d/%d\n", manifest.PPTXSuccess, len(decks))
	fmt.Printf("  PDF:  %d/%d\n", manifest.PDFSuccess, len(decks))
	fmt.Printf("  HTML: %d/%d\n", manifest.HTMLSuccess, len(decks))
	fmt.Printf("  Manifest: %s\n", manifestPath)

	if manifest.PPTXSuccess < len(decks) || manifest.PDFSuccess < len(decks) {
		os.Exit(1)
	}
}

// checkMarp verifies the marp CLI is installed and returns its version.
func checkMarp() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, "marp", "--version").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// runMarp executes one marp conversion, reporting failures to stderr.
func runMarp(args []string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "marp", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		fmt.Fprintf(os.Stderr, "  marp %s failed: %v\n%s", strings.Join(args, " "), err, out)
		return false
	}
	return true
}

func writeManifest(path string, manifest Manifest) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(manifest)
}
