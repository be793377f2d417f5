package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/exposurescan/internal/model"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	seed, err := Default()
	if err != nil {
		t.Fatalf("default catalog must be valid: %v", err)
	}
	if len(seed.Categories) != 6 {
		t.Errorf("expected 6 categories, got %d", len(seed.Categories))
	}
	if len(seed.Ingredients) != 30 {
		t.Errorf("expected 30 ingredients, got %d", len(seed.Ingredients))
	}

	catalog, err := seed.Catalog()
	if err != nil {
		t.Fatalf("failed to build catalog: %v", err)
	}

	// every key the pipeline can emit must exist
	keys := []string{
		model.IngredientEmail, model.IngredientPasswordLeak, model.IngredientPhone,
		model.IngredientTaxID, model.IngredientNationalID, model.IngredientPaymentHandle,
		model.IngredientCardNumber, model.IngredientHomeAddress, model.IngredientDateOfBirth,
		model.IngredientFullName, model.IngredientUsername, model.IngredientIPAddress,
		model.IngredientFamilyDetails, model.IngredientJobTitle, model.IngredientCompanyName,
		model.IngredientEducation, model.IngredientLinkedIn, model.IngredientGitHub,
		model.IngredientInstagram, model.IngredientFacebook, model.IngredientTwitter,
		model.IngredientYouTube, model.IngredientReddit, model.IngredientTelegram,
		model.IngredientWhatsApp, model.IngredientSocialPhotos, model.IngredientWebMentions,
	}
	for _, key := range keys {
		if _, ok := catalog.Ingredient(key); !ok {
			t.Errorf("default catalog is missing %s", key)
		}
	}

	if len(catalog.SourceIngredients(model.SourceDarkWeb)) == 0 {
		t.Error("expected DARK_WEB ingredients in the default catalog")
	}

	ing, _ := catalog.Ingredient(model.IngredientEmail)
	if ing.CategoryKey != "ACCOUNT_TAKEOVER" || ing.PossibleScam == "" {
		t.Errorf("unexpected email ingredient: %+v", ing)
	}
}

func TestDefaultYAMLIsACopy(t *testing.T) {
	t.Parallel()

	a := DefaultYAML()
	a[0] = 'X'
	if DefaultYAML()[0] == 'X' {
		t.Error("DefaultYAML must return a copy")
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	valid := `
categories:
  - key: A
    name: Alpha
ingredients:
  - key: email_id
    name: Email
    category: A
    detectionSources: [breach, web-search]
`

	t.Run("valid seed with lenient source labels", func(t *testing.T) {
		t.Parallel()

		seed, err := Parse([]byte(valid))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := seed.Ingredients[0].DetectionSources
		if len(got) != 2 || got[0] != model.SourceBreach || got[1] != model.SourceWebSearch {
			t.Errorf("unexpected sources: %v", got)
		}
	})

	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{
			name:    "no ingredients",
			yaml:    "categories:\n  - key: A\n",
			wantErr: ErrEmpty,
		},
		{
			name:    "unknown source",
			yaml:    strings.Replace(valid, "web-search", "CARRIER_PIGEON", 1),
			wantErr: ErrUnknownSource,
		},
		{
			name:    "no sources",
			yaml:    strings.Replace(valid, "[breach, web-search]", "[]", 1),
			wantErr: ErrNoSources,
		},
		{
			name:    "empty ingredient key",
			yaml:    strings.Replace(valid, "key: email_id", "key: ''", 1),
			wantErr: ErrEmptyKey,
		},
		{
			name:    "unknown category",
			yaml:    strings.Replace(valid, "category: A", "category: B", 1),
			wantErr: model.ErrUnknownCategory,
		},
		{
			name:    "duplicate ingredient",
			yaml:    valid + "  - key: email_id\n    category: A\n    detectionSources: [BREACH]\n",
			wantErr: model.ErrDuplicateKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse([]byte(tt.yaml))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()

		if _, err := Parse([]byte("categories: [")); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	t.Run("reads file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "catalog.yaml")
		if err := os.WriteFile(path, DefaultYAML(), 0o600); err != nil {
			t.Fatal(err)
		}
		seed, err := LoadFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(seed.Ingredients) != 30 {
			t.Errorf("expected 30 ingredients, got %d", len(seed.Ingredients))
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected not-exist error, got %v", err)
		}
	})

	t.Run("reader", func(t *testing.T) {
		t.Parallel()

		seed, err := Load(strings.NewReader(string(DefaultYAML())))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(seed.Categories) != 6 {
			t.Errorf("expected 6 categories, got %d", len(seed.Categories))
		}
	})
}
