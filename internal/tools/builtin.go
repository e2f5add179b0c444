package tools

import (
	"context"
	"fmt"
	"strings"
	"time"
)

func (r *Registry) registerBuiltins() {
	builtins := []Tool{
		{
			Name:        "weather_api",
			Description: "Mock weather lookup by city; returns temp (°C) and condition.",
			Run:         weatherAPI,
		},
		{
			Name:        "fx_api",
			Description: "Mock foreign-exchange rate lookup by currency pair.",
			Run:         fxAPI,
		},
		{
			Name:        "calculator",
			Description: "Evaluates a basic arithmetic expression (+ - * / and parentheses).",
			Run:         calculator,
		},
		{
			Name:        "wiki_search",
			Description: "Mock encyclopedia search; returns a short article for known queries.",
			Run:         wikiSearch,
		},
		{
			Name:        "shopping_search",
			Description: "Mock product search; returns offers sorted by price.",
			Run:         shoppingSearch,
		},
		{
			Name:        "current_date",
			Description: "Returns today's date in YYYY-MM-DD.",
			Run: func(ctx context.Context, args map[string]any) (any, error) {
				return r.clock().Format("2006-01-02"), nil
			},
		},
	}
	for _, tool := range builtins {
		r.tools[tool.Name] = tool
	}
}

func (r *Registry) clock() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.now()
}

func weatherAPI(ctx context.Context, args map[string]any) (any, error) {
	city := strings.ToLower(stringArg(args, "city"))
	switch {
	case strings.Contains(city, "rome"):
		return map[string]any{"temp": 28.0, "condition": "Sunny"}, nil
	case strings.Contains(city, "paris"):
		return map[string]any{"temp": 18.0, "condition": "Rainy"}, nil
	case strings.Contains(city, "oslo"):
		return map[string]any{"temp": 9.0, "condition": "Clear"}, nil
	default:
		return nil, fmt.Errorf("weather_api: unknown city %q", stringArg(args, "city"))
	}
}

func fxAPI(ctx context.Context, args map[string]any) (any, error) {
	base := strings.ToUpper(stringArg(args, "base"))
	quote := strings.ToUpper(stringArg(args, "quote"))
	if base == "" && quote == "" {
		// Accept a combined pair argument like "USD/EUR".
		pair := strings.ToUpper(stringArg(args, "pair"))
		if i := strings.IndexAny(pair, "/-"); i > 0 {
			base, quote = pair[:i], pair[i+1:]
		}
	}
	if base == "USD" && quote == "EUR" {
		return map[string]any{"base": "USD", "quote": "EUR", "rate": 0.90}, nil
	}
	return nil, fmt.Errorf("fx_api: unsupported pair %s/%s", base, quote)
}

func wikiSearch(ctx context.Context, args map[string]any) (any, error) {
	query := strings.ToLower(stringArg(args, "query"))
	if strings.Contains(query, "penicillin") || strings.Contains(query, "fleming") {
		return map[string]any{
			"title":   "Penicillin",
			"summary": "Penicillin was discovered by Alexander Fleming in 1928.",
			"name":    "Alexander Fleming",
			"year":    1928.0,
		}, nil
	}
	return nil, fmt.Errorf("wiki_search: no article for %q", stringArg(args, "query"))
}

func shoppingSearch(ctx context.Context, args map[string]any) (any, error) {
	query := strings.ToLower(stringArg(args, "query"))
	if !strings.Contains(query, "usb") && !strings.Contains(query, "cable") {
		return nil, fmt.Errorf("shopping_search: no offers for %q", stringArg(args, "query"))
	}
	return []any{
		map[string]any{"title": "USB-C cable 1m", "url": "https://shop.example/u1", "price": 9.5, "rating": 4.6},
		map[string]any{"title": "USB-C cable 2m braided", "url": "https://shop.example/u2", "price": 12.0, "rating": 4.8},
		map[string]any{"title": "USB-C to USB-A adapter", "url": "https://shop.example/u3", "price": 14.5, "rating": 4.2},
	}, nil
}

func stringArg(args map[string]any, key string) string {
	if args == nil {
		return ""
	}
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}
