package pipeline

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"access-gateway-api/db"
	"access-gateway-api/relay"
)

// DefaultSettingsTTL bounds how long an administrative change can take to
// reach the pipeline.
const DefaultSettingsTTL = 5 * time.Second

// Snapshot is the configuration one pipeline invocation runs with.
type Snapshot struct {
	// Keywords is nil when none are configured; the gate then uses its fallback.
	Keywords []string
	// KeywordsLoaded is false when the keyword setting could not be read or
	// decoded. The gate stays closed in that case.
	KeywordsLoaded   bool
	ForwardingActive bool
	Relay            relay.Credentials
}

type SettingsStore interface {
	GetSettings(ctx context.Context) (map[string]string, error)
}

// SettingsLoader reads a Snapshot from the settings store and reuses it for
// at most ttl. Failed reads are never cached.
type SettingsLoader struct {
	store SettingsStore
	ttl   time.Duration
	now   func() time.Time

	mu       sync.Mutex
	cached   Snapshot
	loadedAt time.Time
	valid    bool
}

func NewSettingsLoader(store SettingsStore, ttl time.Duration) *SettingsLoader {
	if ttl < 0 {
		ttl = 0
	}
	return &SettingsLoader{store: store, ttl: ttl, now: time.Now}
}

// Load never fails: when the store is unreachable the returned snapshot gates
// every message closed and disables forwarding.
func (l *SettingsLoader) Load(ctx context.Context) Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.valid && l.now().Sub(l.loadedAt) < l.ttl {
		return l.cached
	}

	values, err := l.store.GetSettings(ctx)
	if err != nil {
		log.Errorw("failed to load settings", "error", err)
		return Snapshot{}
	}

	snapshot := ParseSnapshot(values)
	if snapshot.KeywordsLoaded {
		l.cached = snapshot
		l.loadedAt = l.now()
		l.valid = true
	}
	return snapshot
}

// Invalidate drops the cached snapshot, e.g. after the admin API wrote settings.
func (l *SettingsLoader) Invalidate() {
	l.mu.Lock()
	l.valid = false
	l.mu.Unlock()
}

// ParseSnapshot decodes raw setting values.
func ParseSnapshot(values map[string]string) Snapshot {
	snapshot := Snapshot{
		KeywordsLoaded: true,
		Relay: relay.Credentials{
			BotToken: strings.TrimSpace(values[db.SettingRelayBotToken]),
			ChatID:   strings.TrimSpace(values[db.SettingRelayChatID]),
		},
	}

	if raw := strings.TrimSpace(values[db.SettingForwardKeywords]); raw != "" {
		var keywords []string
		if err := json.Unmarshal([]byte(raw), &keywords); err != nil {
			log.Warnw("invalid keyword setting, gating closed", "error", err)
			snapshot.KeywordsLoaded = false
		} else {
			snapshot.Keywords = keywords
		}
	}

	if active, err := strconv.ParseBool(strings.TrimSpace(values[db.SettingForwardingActive])); err == nil {
		snapshot.ForwardingActive = active
	}

	return snapshot
}
