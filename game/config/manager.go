package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wricardo/mcp-training/foodchain/game/engine"
	"github.com/wricardo/mcp-training/foodchain/game/savefile"
)

var (
	ErrEraDataNotFound = errors.New("era data not found")
	ErrInvalidEraData  = errors.New("invalid era data")
)

const chainPrefix = "food chain"

// EraInfo summarizes the data available for one era
type EraInfo struct {
	Era      engine.Era         `json:"era"`
	Filename string             `json:"filename"`
	Chains   []engine.FoodChain `json:"chains"`
	Error    string             `json:"error,omitempty"`
}

// Manager loads and caches the food-chain pools of each era
type Manager struct {
	dataDir string
	chains  map[engine.Era][]engine.FoodChain
	mu      sync.RWMutex
}

// NewManager creates a manager reading era files from dataDir
func NewManager(dataDir string) (*Manager, error) {
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("data directory does not exist: %s", dataDir)
	}
	return &Manager{
		dataDir: dataDir,
		chains:  make(map[engine.Era][]engine.FoodChain),
	}, nil
}

// DataDir returns the directory era files are read from
func (m *Manager) DataDir() string {
	return m.dataDir
}

// Filename returns the data file name for an era, e.g. "past.txt"
func Filename(era engine.Era) string {
	return strings.ToLower(string(era)) + ".txt"
}

// Chains returns the food-chain pool of an era, reading its file on first use.
// It satisfies engine.ChainSource.
func (m *Manager) Chains(era engine.Era) ([]engine.FoodChain, error) {
	if !era.Valid() {
		return nil, fmt.Errorf("%w: unknown era %q", engine.ErrInvalidConfig, era)
	}

	m.mu.RLock()
	if chains, exists := m.chains[era]; exists {
		m.mu.RUnlock()
		return chains, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if chains, exists := m.chains[era]; exists {
		return chains, nil
	}

	path := filepath.Join(m.dataDir, Filename(era))
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrEraDataNotFound, Filename(era))
		}
		return nil, fmt.Errorf("failed to read era data: %w", err)
	}
	defer f.Close()

	chains, err := ParseChains(f, Filename(era))
	if err != nil {
		return nil, err
	}
	m.chains[era] = chains
	return chains, nil
}

// ListEras reports every era with its chains, or the error loading them
func (m *Manager) ListEras() []EraInfo {
	infos := make([]EraInfo, 0, len(engine.Eras))
	for _, era := range engine.Eras {
		info := EraInfo{Era: era, Filename: Filename(era)}
		chains, err := m.Chains(era)
		if err != nil {
			info.Error = err.Error()
		} else {
			info.Chains = chains
		}
		infos = append(infos, info)
	}
	return infos
}

// RefreshCache drops cached pools so the next access rereads the files
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chains = make(map[engine.Era][]engine.FoodChain)
}

// Count returns the number of eras currently cached
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chains)
}

// ParseChains reads "Food Chain: apex,predator,prey,food" lines. Other lines
// are ignored; a matching line without exactly four non-empty names is an error.
func ParseChains(r io.Reader, source string) ([]engine.FoodChain, error) {
	var chains []engine.FoodChain
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || !strings.HasPrefix(strings.ToLower(line), chainPrefix) {
			continue
		}
		_, content, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("%w: %s:%d: missing ':' in %q", ErrInvalidEraData, source, lineNo, line)
		}
		parts := strings.Split(content, ",")
		if len(parts) != 4 {
			return nil, fmt.Errorf("%w: %s:%d: expected 4 names, got %d", ErrInvalidEraData, source, lineNo, len(parts))
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
			if err := savefile.ValidateName(parts[i]); err != nil {
				return nil, fmt.Errorf("%w: %s:%d: %v", ErrInvalidEraData, source, lineNo, err)
			}
		}
		chains = append(chains, engine.FoodChain{
			Apex:     parts[0],
			Predator: parts[1],
			Prey:     parts[2],
			Food:     parts[3],
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}
	return chains, nil
}
