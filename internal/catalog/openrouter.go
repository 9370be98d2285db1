package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// OpenRouterRecommender asks a chat-completions model to pick playlists
// from the candidate set. Callers are expected to fall back to the local
// scorer on any error: recommendations are a best-effort amenity.
type OpenRouterRecommender struct {
	apiKey string
	url    string
	model  string
	http   *http.Client
}

func NewOpenRouterRecommender(apiKey, url, model string) *OpenRouterRecommender {
	if url == "" {
		url = "https://openrouter.ai/api/v1/chat/completions"
	}
	if model == "" {
		model = "deepseek/deepseek-chat"
	}
	return &OpenRouterRecommender{
		apiKey: apiKey,
		url:    url,
		model:  model,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type modelRecommendation struct {
	Explanation     string `json:"explanation"`
	Recommendations []struct {
		ID     int64  `json:"id"`
		Name   string `json:"name"`
		Reason string `json:"reason"`
	} `json:"recommendations"`
}

func (o *OpenRouterRecommender) Recommend(ctx context.Context, query string, candidates []Playlist) (Recommendation, error) {
	var catalog strings.Builder
	for _, p := range candidates {
		desc := p.Description
		if desc == "" {
			desc = "No description"
		}
		tags := "None"
		if len(p.Tags) > 0 {
			tags = strings.Join(p.Tags, ", ")
		}
		fmt.Fprintf(&catalog, "- ID:%d %q: %s [Tags: %s]\n", p.ID, p.Name, desc, tags)
	}

	system := `You are a music recommendation AI. You have access to a collection of playlists with their names, descriptions, and tags. Based on the user's request, recommend 2-3 playlists from the available collection that best match their needs.

Available playlists:
` + catalog.String() + `
Respond with a JSON object in this exact format:
{
  "explanation": "Brief explanation of why these playlists match the request",
  "recommendations": [
    {
      "id": playlist_id,
      "name": "playlist_name",
      "reason": "why this playlist fits the request"
    }
  ]
}`

	payload, err := json.Marshal(chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: query},
		},
		MaxTokens:   1000,
		Temperature: 0.7,
	})
	if err != nil {
		return Recommendation{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, bytes.NewReader(payload))
	if err != nil {
		return Recommendation{}, err
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Title", "Playlist Recommendation System")

	resp, err := o.http.Do(req)
	if err != nil {
		return Recommendation{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Recommendation{}, fmt.Errorf("openrouter: status %d", resp.StatusCode)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return Recommendation{}, err
	}
	if len(chat.Choices) == 0 || chat.Choices[0].Message.Content == "" {
		return Recommendation{}, errors.New("openrouter: empty completion")
	}

	content := stripJSONFence(chat.Choices[0].Message.Content)
	var parsed modelRecommendation
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return Recommendation{}, fmt.Errorf("openrouter: parse completion: %w", err)
	}

	byID := make(map[int64]Playlist, len(candidates))
	for _, p := range candidates {
		byID[p.ID] = p
	}

	recs := []RecommendedPlaylist{}
	for _, r := range parsed.Recommendations {
		p, ok := byID[r.ID]
		if !ok {
			// The model hallucinated an id; drop the entry.
			continue
		}
		recs = append(recs, RecommendedPlaylist{Playlist: p, Reason: r.Reason})
	}
	if len(recs) == 0 {
		return Recommendation{}, errors.New("openrouter: no usable recommendations")
	}

	return Recommendation{
		Explanation:     parsed.Explanation,
		Recommendations: recs,
	}, nil
}

// stripJSONFence removes a surrounding ```json code fence when the model
// wraps its answer in one.
func stripJSONFence(content string) string {
	content = strings.TrimSpace(content)
	if idx := strings.Index(content, "```json"); idx >= 0 {
		content = content[idx+len("```json"):]
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}
	return strings.TrimSpace(content)
}
