package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/Tubbz-alt/arxiv-auth/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store provides durable persistence for clients, authorization codes,
// sessions, and users. All methods are safe for concurrent use.
type Store struct {
	db *gorm.DB
}

func New(driver, dsn string) (*Store, error) {
	dialector, err := GetDialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Translate driver duplicate-key errors into gorm.ErrDuplicatedKey so
		// SaveAuthCode can report collisions uniformly across dialects.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	// Auto migrate
	if err := db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.ClientAuthorization{},
		&models.ClientGrantType{},
		&models.AuthorizationCode{},
		&models.Session{},
	); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// ============================================================
// Client registry
// ============================================================

// ResolveClient loads a client together with its authorization and grant type
// rows. Returns ErrNoSuchClient when the ID is unknown; the grant engine
// converts that into a generic authentication failure so callers cannot probe
// for registered IDs.
func (s *Store) ResolveClient(ctx context.Context, clientID string) (*models.Client, error) {
	var client models.Client
	if err := s.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSuchClient
		}
		return nil, fmt.Errorf("failed to load client: %w", err)
	}

	var auths []models.ClientAuthorization
	if err := s.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Find(&auths).Error; err != nil {
		return nil, fmt.Errorf("failed to load client authorizations: %w", err)
	}

	var grants []models.ClientGrantType
	if err := s.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Find(&grants).Error; err != nil {
		return nil, fmt.Errorf("failed to load client grant types: %w", err)
	}

	client.Scopes = make([]string, 0, len(auths))
	for _, a := range auths {
		client.Scopes = append(client.Scopes, a.Scope)
	}
	client.GrantTypes = make([]string, 0, len(grants))
	for _, g := range grants {
		client.GrantTypes = append(client.GrantTypes, g.GrantType)
	}

	return &client, nil
}

// CreateClient persists a client together with its authorization and grant
// type rows (taken from the transient Scopes and GrantTypes fields) in one
// transaction. Used by the client-management boundary and by tests.
func (s *Store) CreateClient(ctx context.Context, client *models.Client) error {
	if client.ClientID == "" {
		client.ClientID = uuid.NewString()
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(client).Error; err != nil {
			return fmt.Errorf("failed to create client: %w", err)
		}
		for _, scope := range client.Scopes {
			row := models.ClientAuthorization{ClientID: client.ClientID, Scope: scope}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to create client authorization: %w", err)
			}
		}
		for _, gt := range client.GrantTypes {
			row := models.ClientGrantType{ClientID: client.ClientID, GrantType: gt}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to create client grant type: %w", err)
			}
		}
		return nil
	})
}

// ============================================================
// Authorization codes
// ============================================================

// SaveAuthCode persists a new authorization code. A primary-key collision is
// reported as ErrDuplicateCode.
func (s *Store) SaveAuthCode(ctx context.Context, code *models.AuthorizationCode) error {
	if err := s.db.WithContext(ctx).Create(code).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateCode
		}
		return fmt.Errorf("failed to save authorization code: %w", err)
	}
	return nil
}

// GetAuthCode loads an authorization code scoped by both code value and owning
// client. A code presented against the wrong client ID misses; callers see
// ErrNoSuchAuthCode, not a distinct error.
func (s *Store) GetAuthCode(
	ctx context.Context,
	code, clientID string,
) (*models.AuthorizationCode, error) {
	var record models.AuthorizationCode
	err := s.db.WithContext(ctx).
		Where("code = ? AND client_id = ?", code, clientID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSuchAuthCode
		}
		return nil, fmt.Errorf("failed to load authorization code: %w", err)
	}
	return &record, nil
}

// GetAuthCodeByUser loads an authorization code asserting its resource-owner
// linkage. Used only during the authenticate-resource-owner step of the
// exchange.
func (s *Store) GetAuthCodeByUser(
	ctx context.Context,
	code, userID string,
) (*models.AuthorizationCode, error) {
	var record models.AuthorizationCode
	err := s.db.WithContext(ctx).
		Where("code = ? AND user_id = ?", code, userID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSuchAuthCode
		}
		return nil, fmt.Errorf("failed to load authorization code: %w", err)
	}
	return &record, nil
}

// ConsumeAuthCode deletes a code, reporting whether this caller actually
// removed the row. The single-row DELETE serializes concurrent exchanges of
// the same code: exactly one caller observes success, every other caller gets
// ErrNoSuchAuthCode. This is a correctness-critical invariant, not an
// optimization.
func (s *Store) ConsumeAuthCode(ctx context.Context, code string) error {
	result := s.db.WithContext(ctx).
		Where("code = ?", code).
		Delete(&models.AuthorizationCode{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete authorization code: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNoSuchAuthCode
	}
	return nil
}

// DeleteAuthCode removes a code without caring whether it existed. Idempotent.
func (s *Store) DeleteAuthCode(ctx context.Context, code string) error {
	err := s.db.WithContext(ctx).
		Where("code = ?", code).
		Delete(&models.AuthorizationCode{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete authorization code: %w", err)
	}
	return nil
}

// ============================================================
// Sessions
// ============================================================

// CreateSession persists a session record keyed by its token value. The
// single-row insert is atomic: a reader keyed on the token either sees the
// whole session or nothing.
func (s *Store) CreateSession(ctx context.Context, session *models.Session) error {
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSession loads a session by its token value.
func (s *Store) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	var session models.Session
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSuchSession
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return &session, nil
}

// DeleteSession removes a session. Idempotent; used by logout.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&models.Session{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ============================================================
// Users
// ============================================================

func (s *Store) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSuchUser
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSuchUser
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.UserID == "" {
		user.UserID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Health checks the database connection
func (s *Store) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
