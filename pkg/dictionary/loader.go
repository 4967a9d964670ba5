// Package dictionary loads suggestion word lists into a patricia trie.
package dictionary

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Entry is one indexed suggestion. Nav entries carry a destination.
type Entry struct {
	Word        string
	Frequency   int
	Type        string
	Title       string
	URL         string
	Description string
}

// IsNavigation reports whether e points at a site instead of a query.
func (e Entry) IsNavigation() bool {
	return e.URL != ""
}

// Stats provides statistics about the loaded data
type Stats struct {
	TotalWords   int
	Navigations  int
	LoadedFiles  int
	MaxFrequency int
}

// Dictionary holds the loaded entries keyed by lowercase word.
type Dictionary struct {
	trie  *patricia.Trie
	stats Stats
	mu    sync.RWMutex
}

// New returns an empty dictionary.
func New() *Dictionary {
	return &Dictionary{trie: patricia.NewTrie()}
}

// Add inserts or replaces an entry.
func (d *Dictionary) Add(e Entry) {
	key := strings.ToLower(strings.TrimSpace(e.Word))
	if key == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.trie.Get(patricia.Prefix(key)) == nil {
		d.stats.TotalWords++
		if e.IsNavigation() {
			d.stats.Navigations++
		}
	}
	d.trie.Set(patricia.Prefix(key), e)
	if e.Frequency > d.stats.MaxFrequency {
		d.stats.MaxFrequency = e.Frequency
	}
}

// Visit walks every entry under prefix.
func (d *Dictionary) Visit(prefix string, fn func(Entry) error) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.trie.VisitSubtree(patricia.Prefix(prefix), func(_ patricia.Prefix, item patricia.Item) error {
		e, ok := item.(Entry)
		if !ok {
			log.Errorf("Unknown item type: %T", item)
			return nil
		}
		return fn(e)
	})
}

// GetStats returns current statistics.
func (d *Dictionary) GetStats() Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.stats
}

// LoadFile reads one file of any supported format into d.
func (d *Dictionary) LoadFile(filename string) error {
	format, err := DetectFileFormat(filename)
	if err != nil {
		return err
	}
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open dictionary file %s: %w", filename, err)
	}
	defer file.Close()

	var count int
	switch format {
	case FormatChunk:
		count, err = d.readChunk(bufio.NewReader(file))
	case FormatText:
		count, err = d.readLines(file, parseTextLine)
	case FormatTSV:
		count, err = d.readLines(file, parseTSVLine)
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", filename, err)
	}

	d.mu.Lock()
	d.stats.LoadedFiles++
	d.mu.Unlock()
	log.Debugf("Loaded %d entries from %s", count, filename)
	return nil
}

// LoadDir loads every supported file in dirPath, in name order.
func (d *Dictionary) LoadDir(dirPath string) error {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read dictionary dir %s: %w", dirPath, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".bin", ".txt", ".tsv":
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return fmt.Errorf("no dictionary files found in %s", dirPath)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := d.LoadFile(filepath.Join(dirPath, name)); err != nil {
			log.Warnf("Skipping %s: %v", name, err)
		}
	}
	return nil
}

// readChunk reads the binary chunk layout: int32 count, then per word
// uint16 length, bytes, uint16 rank. Lower rank means more frequent.
func (d *Dictionary) readChunk(r io.Reader) (int, error) {
	var total int32
	if err := binary.Read(r, binary.LittleEndian, &total); err != nil {
		return 0, fmt.Errorf("failed to read chunk header: %w", err)
	}
	if total < 0 {
		return 0, fmt.Errorf("invalid word count %d", total)
	}

	count := 0
	for count < int(total) {
		var wordLen uint16
		if err := binary.Read(r, binary.LittleEndian, &wordLen); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return count, fmt.Errorf("failed to read word length: %w", err)
		}
		word := make([]byte, wordLen)
		if _, err := io.ReadFull(r, word); err != nil {
			return count, fmt.Errorf("failed to read word: %w", err)
		}
		var rank uint16
		if err := binary.Read(r, binary.LittleEndian, &rank); err != nil {
			return count, fmt.Errorf("failed to read rank: %w", err)
		}
		d.Add(Entry{Word: string(word), Frequency: 65535 - int(rank), Type: "QUERY"})
		count++
	}
	return count, nil
}

func (d *Dictionary) readLines(r io.Reader, parse func(string) (Entry, bool)) (int, error) {
	scanner := bufio.NewScanner(r)
	count := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		e, ok := parse(line)
		if !ok {
			log.Debugf("Skipping malformed line: %q", line)
			continue
		}
		d.Add(e)
		count++
	}
	return count, scanner.Err()
}

// parseTextLine reads "some words 123"; the trailing number is optional.
func parseTextLine(line string) (Entry, bool) {
	freq := 1
	word := line
	if i := strings.LastIndexAny(line, " \t"); i > 0 {
		if n, err := strconv.Atoi(line[i+1:]); err == nil {
			freq = n
			word = strings.TrimSpace(line[:i])
		}
	}
	if word == "" {
		return Entry{}, false
	}
	return Entry{Word: word, Frequency: freq, Type: "QUERY"}, true
}

func parseTSVLine(line string) (Entry, bool) {
	cols := strings.Split(line, "\t")
	if len(cols) < 1 || strings.TrimSpace(cols[0]) == "" {
		return Entry{}, false
	}
	e := Entry{Word: strings.TrimSpace(cols[0]), Frequency: 1, Type: "QUERY"}
	if len(cols) > 1 {
		if n, err := strconv.Atoi(strings.TrimSpace(cols[1])); err == nil {
			e.Frequency = n
		}
	}
	if len(cols) > 2 && strings.TrimSpace(cols[2]) != "" {
		e.Type = strings.ToUpper(strings.TrimSpace(cols[2]))
	}
	if len(cols) > 3 {
		e.Title = strings.TrimSpace(cols[3])
	}
	if len(cols) > 4 {
		e.URL = strings.TrimSpace(cols[4])
	}
	if len(cols) > 5 {
		e.Description = strings.TrimSpace(cols[5])
	}
	return e, true
}
