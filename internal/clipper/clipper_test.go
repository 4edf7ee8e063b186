package clipper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mealminder/internal/llm"
)

// --- Mocks ---

type MockTextGenerator struct {
	Response    string
	ShouldError bool
	Prompt      string
}

func (m *MockTextGenerator) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	m.Prompt = prompt
	if m.ShouldError {
		return llm.ContentResponse{}, fmt.Errorf("mock ai error")
	}
	return llm.ContentResponse{Content: m.Response}, nil
}

// --- Tests ---

func TestFetchAndCleanHTML(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		html := `
		<html>
			<head><script>alert('bad');</script></head>
			<body>
				<h1>Tasty Recipe</h1>
				<div class="ads">Buy stuff!</div>
				<p>Mix flour and water.</p>
				<script>more_bad_stuff()</script>
				<footer>Copyright 2024</footer>
			</body>
		</html>`
		w.Write([]byte(html))
	}))
	defer ts.Close()

	c := NewClipper(&MockTextGenerator{})

	cleanText, err := c.fetchAndCleanHTML(ts.URL)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if strings.Contains(cleanText, "alert('bad')") {
		t.Error("Failed to remove <script> tags")
	}
	if strings.Contains(cleanText, "Buy stuff!") {
		t.Error("Failed to remove .ads class")
	}
	if strings.Contains(cleanText, "Copyright 2024") {
		t.Error("Failed to remove <footer>")
	}
	if !strings.Contains(cleanText, "Tasty Recipe") {
		t.Error("Expected to find 'Tasty Recipe'")
	}
	if !strings.Contains(cleanText, "Mix flour and water.") {
		t.Error("Expected to find body content")
	}
}

func TestClipURL_Success(t *testing.T) {
	aiResponse := `{"title": "Mock Pie", "ingredients": ["2 apples", "1 cup sugar"], "steps": ["Bake"], "prep_time": "1h", "servings": "8"}`

	mockAI := &MockTextGenerator{Response: aiResponse}
	c := NewClipper(mockAI)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>Some Content</body></html>"))
	}))
	defer ts.Close()

	recipe, err := c.ClipURL(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("ClipURL failed: %v", err)
	}

	if recipe.Title != "Mock Pie" {
		t.Errorf("Expected title 'Mock Pie', got '%s'", recipe.Title)
	}
	if len(recipe.Ingredients) != 2 || recipe.Ingredients[0] != "2 apples" {
		t.Errorf("Expected ingredient lines with quantities, got %v", recipe.Ingredients)
	}
	if !strings.Contains(mockAI.Prompt, "Some Content") {
		t.Error("Expected the page content in the extraction prompt")
	}
}

func TestClipURL_FetchFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	c := NewClipper(&MockTextGenerator{})

	if _, err := c.ClipURL(context.Background(), ts.URL); err == nil {
		t.Fatal("Expected error on non-200 response")
	}
}

func TestClipURL_BadAIResponse(t *testing.T) {
	mockAI := &MockTextGenerator{Response: "not json at all"}
	c := NewClipper(mockAI)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>Recipe</body></html>"))
	}))
	defer ts.Close()

	if _, err := c.ClipURL(context.Background(), ts.URL); err == nil {
		t.Fatal("Expected error on unparseable AI response")
	}
}
