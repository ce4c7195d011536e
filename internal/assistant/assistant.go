package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/infrastructure/store"
)

const (
	maxPrimary         = 5
	maxRecommendations = 3
	historyWindow      = 6
	historyBucket      = "chat_history"
)

// KV holds per-session conversation windows.
type KV interface {
	Get(bucket, key string) (any, bool)
	Set(bucket, key string, value any)
}

// Turn is one utterance in a conversation.
type Turn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Reply is a ranked answer: best-fit products first, adjacent suggestions
// second.
type Reply struct {
	Message         string            `json:"message"`
	Products        []catalog.Product `json:"products"`
	Recommendations []catalog.Product `json:"recommendations"`
}

// compactProduct is the catalog projection embedded in the model prompt.
type compactProduct struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Stock       int      `json:"stock"`
	Category    string   `json:"category,omitempty"`
	Brand       string   `json:"brand,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Service maps free-text shopping queries onto in-stock catalog products,
// through the model when it cooperates and through the heuristic cascade
// when it does not.
type Service struct {
	catalog   store.CatalogStore
	completer Completer
	sessions  KV
}

func NewService(catalogStore store.CatalogStore, completer Completer, sessions KV) *Service {
	return &Service{
		catalog:   catalogStore,
		completer: completer,
		sessions:  sessions,
	}
}

// Search answers a shopping query. While any in-stock product exists the
// result always contains at least one primary match.
func (s *Service) Search(ctx context.Context, sessionID, query string) (*Reply, error) {
	inStock, err := s.catalog.ListInStock(ctx)
	if err != nil {
		return nil, err
	}
	if len(inStock) == 0 {
		return &Reply{Message: "We're currently out of stock on everything. Please check back soon."}, nil
	}

	history := s.loadHistory(sessionID)
	reply := s.answer(ctx, query, history, inStock)

	s.saveHistory(sessionID, history, query, reply.Message)
	return reply, nil
}

func (s *Service) answer(ctx context.Context, query string, history []Turn, inStock []catalog.Product) *Reply {
	byID := make(map[string]catalog.Product, len(inStock))
	for _, p := range inStock {
		byID[p.ID] = p
	}

	if s.completer != nil {
		raw, err := s.completer.Complete(ctx, buildPrompt(query, history, inStock))
		if err == nil {
			result := ParseReply(raw)
			if result.Ok {
				reply := s.resolve(result.Reply, byID, inStock)
				if len(reply.Products) > 0 {
					return reply
				}
				log.Printf("[Assistant] Model reply had no usable product ids, falling back")
			} else {
				log.Printf("[Assistant] Could not parse model reply (%s), falling back", result.Err)
			}
		} else {
			log.Printf("[Assistant] Completion call failed, falling back: %v", err)
		}
	}

	matches := HeuristicSearch(query, inStock)
	if len(matches) > maxPrimary {
		matches = matches[:maxPrimary]
	}
	return &Reply{
		Message:  fallbackMessage(query, matches),
		Products: matches,
	}
}

// resolve validates the model's ids against the live in-stock catalog,
// discarding unknown ids and capping both tiers. If validation leaves no
// primary matches, the first in-stock products stand in: the storefront
// never shows nothing while stock exists.
func (s *Service) resolve(mr ModelReply, byID map[string]catalog.Product, inStock []catalog.Product) *Reply {
	reply := &Reply{Message: mr.Message}

	seen := map[string]bool{}
	for _, id := range mr.ProductIDs {
		if len(reply.Products) >= maxPrimary {
			break
		}
		p, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		reply.Products = append(reply.Products, p)
	}

	for _, id := range mr.Recommendations {
		if len(reply.Recommendations) >= maxRecommendations {
			break
		}
		p, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		reply.Recommendations = append(reply.Recommendations, p)
	}

	if len(reply.Products) == 0 {
		n := maxPrimary
		if len(inStock) < n {
			n = len(inStock)
		}
		reply.Products = inStock[:n]
		if reply.Message == "" {
			reply.Message = "Here are a few picks from our catalog."
		}
	}
	return reply
}

func buildPrompt(query string, history []Turn, inStock []catalog.Product) string {
	compact := make([]compactProduct, len(inStock))
	for i, p := range inStock {
		compact[i] = compactProduct{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Stock:       p.Stock,
			Category:    p.Category,
			Brand:       p.Brand,
			Tags:        p.Tags,
		}
	}
	catalogJSON, _ := json.Marshal(compact)

	var b strings.Builder
	b.WriteString("You are a product search assistant for an online store.\n")
	b.WriteString("Catalog (in-stock products only):\n")
	b.Write(catalogJSON)
	b.WriteString("\n\nConversation so far:\n")
	for _, t := range history {
		fmt.Fprintf(&b, "%s: %s\n", t.Role, t.Content)
	}
	fmt.Fprintf(&b, "user: %s\n\n", query)
	b.WriteString(`Pick products for the user's latest request. Priority rules:
1. Prefer exact product-type and budget matches.
2. If nothing fits the budget, match the product type and ignore the budget.
3. Otherwise pick similar or related items.
4. Never return an empty product_ids list; the catalog is not empty.
Respond with JSON only, no prose around it:
{"message": "<one short sentence for the shopper>", "product_ids": ["..."], "recommendations": ["..."]}
product_ids holds up to 5 best matches; recommendations holds up to 3 adjacent suggestions not already listed.`)
	return b.String()
}

func fallbackMessage(query string, matches []catalog.Product) string {
	if budget, ok := ExtractBudget(query); ok {
		over := true
		for _, p := range matches {
			if p.Price <= budget {
				over = false
				break
			}
		}
		if over {
			return fmt.Sprintf("Nothing in stock under %.0f right now, but these are close.", budget)
		}
	}
	return "Here's what matches your search."
}

func (s *Service) loadHistory(sessionID string) []Turn {
	if s.sessions == nil || sessionID == "" {
		return nil
	}
	if v, ok := s.sessions.Get(historyBucket, sessionID); ok {
		if turns, ok := v.([]Turn); ok {
			return turns
		}
	}
	return nil
}

// saveHistory appends the latest exchange, keeping only the most recent
// turns so the prompt window stays small no matter how long the chat runs.
func (s *Service) saveHistory(sessionID string, history []Turn, query, answer string) {
	if s.sessions == nil || sessionID == "" {
		return
	}
	history = append(history,
		Turn{Role: "user", Content: query},
		Turn{Role: "assistant", Content: answer},
	)
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	s.sessions.Set(historyBucket, sessionID, history)
}
