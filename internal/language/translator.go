package language

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/contextutil"
)

// errorSentinels are error messages MyMemory sometimes embeds in the
// translated text of an otherwise successful-looking response.
var errorSentinels = []string{
	"INVALID LANGUAGE PAIR",
	"PLEASE SPECIFY SOURCETEXT",
	"QUERY LENGTH LIMIT EXCEDEED",
}

// Translator converts query text into the pivot language for retrieval.
type Translator interface {
	// ToPivot translates text from the given language into the pivot
	// language. On any provider failure the original text is returned
	// with a non-nil error; callers degrade rather than abort.
	ToPivot(ctx context.Context, text, sourceLang string) (string, error)
}

// MyMemoryTranslator is a client for the MyMemory translation API.
type MyMemoryTranslator struct {
	BaseURL string
	client  *http.Client
}

// NewMyMemoryTranslator creates a translator with the given request timeout.
func NewMyMemoryTranslator(baseURL string, timeout time.Duration) *MyMemoryTranslator {
	return &MyMemoryTranslator{
		BaseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// myMemoryResponse is the subset of the MyMemory payload we read.
type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	ResponseStatus any `json:"responseStatus"`
}

// ToPivot translates text into the pivot language via MyMemory.
func (t *MyMemoryTranslator) ToPivot(ctx context.Context, text, sourceLang string) (string, error) {
	if strings.TrimSpace(text) == "" || sourceLang == Pivot {
		return text, nil
	}
	logger := contextutil.LoggerFromContext(ctx)

	params := url.Values{}
	params.Set("q", text)
	params.Set("langpair", fmt.Sprintf("%s|%s", sourceLang, Pivot))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return text, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "ThalassaAI/1.0")

	resp, err := t.client.Do(req)
	if err != nil {
		return text, fmt.Errorf("translation request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return text, fmt.Errorf("translation bad status %d", resp.StatusCode)
	}

	var mm myMemoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&mm); err != nil {
		return text, fmt.Errorf("failed to decode translation response: %w", err)
	}

	// responseStatus is usually a number but arrives as a string on some
	// error paths; compare its printed form.
	if fmt.Sprintf("%v", mm.ResponseStatus) != "200" {
		return text, fmt.Errorf("translation response status %v", mm.ResponseStatus)
	}

	translated := mm.ResponseData.TranslatedText
	if translated == "" {
		return text, fmt.Errorf("translation returned empty text")
	}
	upper := strings.ToUpper(translated)
	for _, sentinel := range errorSentinels {
		if strings.Contains(upper, sentinel) {
			return text, fmt.Errorf("translation returned error message: %s", translated)
		}
	}

	logger.DebugContext(ctx, "translation successful", "source_lang", sourceLang, "translated_length", len(translated))
	return translated, nil
}
