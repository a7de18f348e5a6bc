package bot

import (
	"context"
	"time"

	"github.com/chatrep/telegram-reputation-bot/internal/rep"
	db "github.com/chatrep/telegram-reputation-bot/internal/storage"
)

// Repository defines the storage operations required by the Bot.
type Repository interface {
	// Entry operations
	StoreEntries(ctx context.Context, entries []rep.ReputationEntry) (int, error)
	FetchSummary(ctx context.Context, target string, chatID *int64, limit int) (*db.ReputationSummary, error)

	// Group operations
	RegisterGroup(ctx context.Context, chatID int64, title, username, chatType string) error
	ActivateGroup(ctx context.Context, chatID int64) error
	DeactivateGroup(ctx context.Context, chatID int64) error
	FindGroupByTitle(ctx context.Context, query string) (*db.Group, error)
	ListGroups(ctx context.Context) ([]db.Group, error)
	ActiveGroupIDs(ctx context.Context) ([]int64, error)
	SetLastProcessedMessage(ctx context.Context, chatID, messageID int64) error

	// User operations
	EnsureUser(ctx context.Context, userID int64, username, firstName, lastName string) error
	SetUserBlocked(ctx context.Context, userID int64, blocked bool) error
	IsUserBlocked(ctx context.Context, userID int64) (bool, error)
	IncrementUserRequests(ctx context.Context, userID int64) error
	TopUsers(ctx context.Context, limit int) ([]db.BotUser, error)
	ActiveUserIDs(ctx context.Context) ([]int64, error)

	// Adjustment operations
	AddManualAdjustment(ctx context.Context, target string, chatID *int64, positiveDelta, negativeDelta int64, note string, createdBy int64) error

	// Request log operations
	LogRequest(ctx context.Context, userID int64, username, target string, chatID *int64, source string) error
	RecentRequests(ctx context.Context, since time.Time, limit int) ([]db.RequestRecord, error)
	CountRequestsSince(ctx context.Context, since time.Time) (int64, error)

	// Settings operations
	SetPaused(ctx context.Context, paused bool) error
	IsPaused(ctx context.Context) (bool, error)

	// Statistics
	FetchStatistics(ctx context.Context) (*db.Statistics, error)
}

// Compile-time assertion that *db.DB implements Repository.
var _ Repository = (*db.DB)(nil)
