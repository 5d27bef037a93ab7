// Package e2e provides end-to-end tests that scan a generated .htm site.
package e2e

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SignatureLine is the 1-based line on which every page carries its signature.
const SignatureLine = 7

// Page is one generated .htm file.
type Page struct {
	RelPath   string
	Title     string
	Topic     string
	Signature string // unique to this page
}

// HTML renders the page. The title is on lines 3 and 5, the signature on SignatureLine.
func (p Page) HTML() string {
	lines := []string{
		"<!DOCTYPE html>",
		"<html>",
		fmt.Sprintf("<head><title>%s</title></head>", p.Title),
		"<body>",
		fmt.Sprintf("<h1>%s</h1>", p.Title),
		fmt.Sprintf("<p>This page is about %s.</p>", p.Topic),
		fmt.Sprintf("<p class=\"sig\">%s</p>", p.Signature),
		"</body>",
		"</html>",
	}
	return strings.Join(lines, "\n") + "\n"
}

// Site is a generated document tree.
type Site struct {
	Pages []Page
}

var topics = []struct {
	title string
	topic string
}{
	{"Harbour Timetable", "ferry departures"},
	{"Orchard Notes", "apple varieties"},
	{"Lighthouse Log", "coastal weather"},
	{"Bakery Menu", "sourdough loaves"},
	{"Observatory Diary", "lunar phases"},
	{"Railway Guide", "branch line stations"},
	{"Garden Almanac", "frost dates"},
	{"Library Catalogue", "rare manuscripts"},
	{"Museum Map", "bronze age tools"},
	{"Festival Programme", "street theatre"},
	{"Workshop Manual", "lathe maintenance"},
	{"Market Prices", "wool and grain"},
}

// BuildSite returns n pages spread over a few nested sections.
func BuildSite(n int) *Site {
	pages := make([]Page, 0, n)
	for i := 0; i < n; i++ {
		t := topics[i%len(topics)]
		section := fmt.Sprintf("section-%d", i%4)
		if i%3 == 0 {
			section = filepath.Join(section, "archive")
		}
		pages = append(pages, Page{
			RelPath:   filepath.Join(section, fmt.Sprintf("page-%03d.htm", i)),
			Title:     t.title,
			Topic:     t.topic,
			Signature: fmt.Sprintf("signature ref-%03d", i),
		})
	}
	return &Site{Pages: pages}
}

// Write materializes the site under root, plus decoy files that must never be scanned.
func (s *Site) Write(root string) error {
	for _, p := range s.Pages {
		if err := writeFile(filepath.Join(root, p.RelPath), []byte(p.HTML())); err != nil {
			return err
		}
		decoy := strings.TrimSuffix(p.RelPath, ".htm") + ".html"
		if err := writeFile(filepath.Join(root, decoy), []byte(p.HTML())); err != nil {
			return err
		}
	}
	return writeFile(filepath.Join(root, "README.txt"), []byte("signature ref-000\n"))
}

// PagesWithTitle returns the pages sharing title, in scan order.
func (s *Site) PagesWithTitle(title string) []Page {
	var out []Page
	for _, p := range s.Pages {
		if p.Title == title {
			out = append(out, p)
		}
	}
	return out
}

func writeFile(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, content, 0644)
}
