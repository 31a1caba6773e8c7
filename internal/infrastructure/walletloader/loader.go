package walletloader

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"soroban_portfolio/internal/app/port"
	"soroban_portfolio/internal/domain/entity"
)

const defaultWatchlistPath = "data/watchlist.txt"

// WatchlistLoader reads the account and contract addresses whose portfolios
// should be tracked from a text file, one address per line.
type WatchlistLoader struct {
	filePath string
	logger   port.Logger
}

// NewWatchlistLoader creates a new WatchlistLoader. An empty path selects data/watchlist.txt.
func NewWatchlistLoader(path string, logger port.Logger) *WatchlistLoader {
	if path == "" {
		path = defaultWatchlistPath
	}
	return &WatchlistLoader{filePath: path, logger: logger}
}

// Addresses returns the valid addresses in file order. Blank lines and lines
// starting with # are ignored; malformed and repeated addresses are skipped.
func (l *WatchlistLoader) Addresses() ([]string, error) {
	file, err := os.Open(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open watchlist file %s: %w", l.filePath, err)
	}
	defer file.Close()

	var addresses []string
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !entity.IsValidAddress(line) {
			l.logger.Warn("Skipping invalid address", "file", l.filePath, "line_number", lineNum, "address", line)
			continue
		}
		if _, dup := seen[line]; dup {
			l.logger.Debug("Skipping duplicate address", "file", l.filePath, "line_number", lineNum)
			continue
		}
		seen[line] = struct{}{}
		addresses = append(addresses, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning watchlist file %s: %w", l.filePath, err)
	}

	l.logger.Info("Watchlist loaded", "count", len(addresses), "path", l.filePath)
	return addresses, nil
}
