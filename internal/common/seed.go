package common

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bank-cards-go/internal/codec"
	"bank-cards-go/internal/models"
	"bank-cards-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

type SeedCard struct {
	Number  string `yaml:"number"`
	Owner   string `yaml:"owner"`
	Expiry  string `yaml:"expiry"`
	Balance string `yaml:"balance"`
}

type SeedUser struct {
	Username string     `yaml:"username"`
	Role     string     `yaml:"role"`
	Cards    []SeedCard `yaml:"cards"`
}

type SeedFile struct {
	Users []SeedUser `yaml:"users"`
}

// SeedResult counts what ApplySeed created and what already existed.
type SeedResult struct {
	UsersCreated int
	UsersSkipped int
	CardsCreated int
	CardsSkipped int
}

func LoadSeedFile(seedFile string) (*SeedFile, error) {
	var seedPath string
	if filepath.IsAbs(seedFile) {
		seedPath = seedFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		seedPath = filepath.Join(wd, seedFile)
	}

	data, err := os.ReadFile(seedPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", seedFile, err)
	}

	return ParseSeed(data)
}

// ParseSeed decodes and validates a seed document.
func ParseSeed(data []byte) (*SeedFile, error) {
	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("unable to parse seed file: %w", err)
	}

	for i, user := range seed.Users {
		if user.Username == "" {
			return nil, fmt.Errorf("user at index %d missing username", i)
		}
		if _, err := models.ParseRole(user.Role); err != nil {
			return nil, fmt.Errorf("user %s: %w", user.Username, err)
		}
		for j, card := range user.Cards {
			if !codec.IsValidNumber(codec.NormalizeNumber(card.Number)) {
				return nil, fmt.Errorf("user %s card at index %d has an invalid number", user.Username, j)
			}
			if _, err := time.Parse(time.DateOnly, card.Expiry); err != nil {
				return nil, fmt.Errorf("user %s card at index %d has invalid expiry %q", user.Username, j, card.Expiry)
			}
			if card.Balance != "" {
				if _, err := decimal.NewFromString(card.Balance); err != nil {
					return nil, fmt.Errorf("user %s card at index %d has invalid balance %q", user.Username, j, card.Balance)
				}
			}
		}
	}

	return &seed, nil
}

// ApplySeed creates the seeded users and cards, skipping any that already exist.
func ApplySeed(ctx context.Context, cards store.CardStore, seed *SeedFile) (SeedResult, error) {
	var result SeedResult

	for _, seedUser := range seed.Users {
		user, created, err := ensureUser(ctx, cards, seedUser)
		if err != nil {
			return result, err
		}
		if created {
			result.UsersCreated++
		} else {
			result.UsersSkipped++
		}

		for _, seedCard := range seedUser.Cards {
			created, err := ensureCard(ctx, cards, user, seedCard)
			if err != nil {
				return result, err
			}
			if created {
				result.CardsCreated++
			} else {
				result.CardsSkipped++
			}
		}
	}

	return result, nil
}

func ensureUser(ctx context.Context, cards store.CardStore, seedUser SeedUser) (*models.User, bool, error) {
	existing, err := cards.GetUserByUsername(ctx, seedUser.Username)
	if err == nil {
		zap.L().Info("User already exists", zap.String("username", existing.Username))
		return existing, false, nil
	}
	if !store.IsKind(err, store.KindNotFound) {
		return nil, false, err
	}

	role, err := models.ParseRole(seedUser.Role)
	if err != nil {
		return nil, false, err
	}
	user, err := cards.CreateUser(ctx, store.CreateUserParams{Username: seedUser.Username, Role: role})
	if err != nil {
		return nil, false, fmt.Errorf("failed to create user %s: %w", seedUser.Username, err)
	}
	zap.L().Info("Created user",
		zap.String("id", user.Id),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)))
	return user, true, nil
}

func ensureCard(ctx context.Context, cards store.CardStore, user *models.User, seedCard SeedCard) (bool, error) {
	number := codec.NormalizeNumber(seedCard.Number)
	if _, err := cards.GetCardByNumber(ctx, number); err == nil {
		zap.L().Info("Card already exists",
			zap.String("user_id", user.Id),
			zap.String("card", models.MaskCardNumber(number)))
		return false, nil
	} else if !store.IsKind(err, store.KindNotFound) {
		return false, err
	}

	expiry, err := time.Parse(time.DateOnly, seedCard.Expiry)
	if err != nil {
		return false, fmt.Errorf("invalid expiry %q: %w", seedCard.Expiry, err)
	}
	balance := decimal.Zero
	if seedCard.Balance != "" {
		if balance, err = decimal.NewFromString(seedCard.Balance); err != nil {
			return false, fmt.Errorf("invalid balance %q: %w", seedCard.Balance, err)
		}
	}

	card, err := cards.CreateCard(ctx, store.CreateCardParams{
		UserId:         user.Id,
		CardNumber:     number,
		Owner:          seedCard.Owner,
		ExpiryDate:     expiry,
		InitialBalance: balance,
	})
	if err != nil {
		return false, fmt.Errorf("failed to create card %s for %s: %w", models.MaskCardNumber(number), user.Username, err)
	}
	zap.L().Info("Created card",
		zap.String("id", card.Id),
		zap.String("user_id", user.Id),
		zap.String("card", card.MaskedNumber()),
		zap.String("balance", card.Balance.StringFixed(2)))
	return true, nil
}
