package i18n

import (
	"errors"
	"testing"

	"github.com/Erdaulet0341/taxi-bots/internal/domain/models"
)

func TestLoadHasExpectedLanguages(t *testing.T) {
	catalog, err := Load()
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	for _, lang := range []string{"kaz", "rus", "eng"} {
		if !catalog.HasLanguage(lang) {
			t.Fatalf("expected language %s", lang)
		}
	}
	if catalog.DefaultLang() != "kaz" {
		t.Fatalf("expected default language kaz, got %s", catalog.DefaultLang())
	}
}

func TestResolveAllLanguagesNonEmpty(t *testing.T) {
	catalog, err := Load()
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	keys := []string{"main_menu", "enter_pickup_address", "no_rides", "button.new_order"}
	for _, lang := range catalog.Languages() {
		for _, key := range keys {
			got, err := catalog.Resolve(key, lang)
			if err != nil {
				t.Fatalf("resolve %s/%s: %v", key, lang, err)
			}
			if got == "" {
				t.Fatalf("resolve %s/%s: empty string", key, lang)
			}
		}
	}
}

func TestResolveUnsupportedLanguageFallsBack(t *testing.T) {
	catalog, err := Load()
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	want, err := catalog.Resolve("main_menu", "kaz")
	if err != nil {
		t.Fatalf("resolve kaz: %v", err)
	}
	got, err := catalog.Resolve("main_menu", "deu")
	if err != nil {
		t.Fatalf("resolve deu: %v", err)
	}
	if got != want {
		t.Fatalf("expected default-language text %q, got %q", want, got)
	}
}

func TestResolveMissingKey(t *testing.T) {
	catalog, err := Load()
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	_, err = catalog.Resolve("does.not.exist", "kaz")
	var missing *MissingKeyError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingKeyError, got %v", err)
	}
	if missing.Key != "does.not.exist" {
		t.Fatalf("unexpected key in error: %s", missing.Key)
	}
}

func TestFormatInterpolation(t *testing.T) {
	catalog, err := Load()
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	got, err := catalog.Format("driver.document_approved", "eng", map[string]string{
		"document_type": "License",
	})
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if got != "✅ Your document (License) has been approved." {
		t.Fatalf("unexpected formatted string: %q", got)
	}
}

func TestFormatMissingPlaceholder(t *testing.T) {
	catalog, err := Load()
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	_, err = catalog.Format("driver.document_approved", "eng", nil)
	var format *FormatError
	if !errors.As(err, &format) {
		t.Fatalf("expected FormatError, got %v", err)
	}
	if format.Placeholder != "document_type" {
		t.Fatalf("unexpected placeholder in error: %s", format.Placeholder)
	}
}

func TestStatusLabelUnknownFallsBackToRaw(t *testing.T) {
	catalog, err := Load()
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	if got := catalog.StatusLabel(models.StatusCompleted, "rus"); got != "Завершена" {
		t.Fatalf("unexpected label: %q", got)
	}
	if got := catalog.StatusLabel(models.RideStatus("TELEPORTED"), "rus"); got != "TELEPORTED" {
		t.Fatalf("expected raw status fallback, got %q", got)
	}
}

func TestNormalizeLanguage(t *testing.T) {
	catalog, err := Load()
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	cases := map[string]string{
		"kaz":   "kaz",
		"kk":    "kaz",
		"ru-RU": "rus",
		"en":    "eng",
		"":      "kaz",
	}
	for in, want := range cases {
		if got := catalog.NormalizeLanguage(in); got != want {
			t.Fatalf("normalize %q: expected %q, got %q", in, want, got)
		}
	}
}
