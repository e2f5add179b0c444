package suite

// Builtin returns the standard 16-task benchmark: four categories of four
// tasks each, with perturbations on every task and failure injection on the
// tool category.
func Builtin() *Catalog {
	catalog, err := NewCatalog("builtin", builtinTasks())
	if err != nil {
		// The builtin definitions are fixed at compile time.
		panic(err)
	}
	return catalog
}

func builtinTasks() []Task {
	return []Task{
		// Baseline: arithmetic, extraction, formatting, factual recall.
		{
			ID:         "A1",
			Category:   CategoryBaseline,
			Complexity: ComplexitySimple,
			Prompt:     "Compute 17 * 24. Output the number only.",
			Expected:   "408",
			Judge:      JudgeSpec{Mode: ModeExact},
			Perturbations: []string{
				"Compute 17×24. Output the number only.",
				"What is 17 * 24 ? Number only.",
			},
		},
		{
			ID:         "A2",
			Category:   CategoryBaseline,
			Complexity: ComplexitySimple,
			Prompt:     "Extract JSON {name, price} from: 'The iPhone 15 costs $999.' Return strictly JSON.",
			Expected:   map[string]any{"name": "iPhone 15", "price": float64(999)},
			Judge: JudgeSpec{
				Mode: ModeStructured,
				Schema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name":  map[string]any{"type": "string"},
						"price": map[string]any{"type": "number"},
					},
					"required": []any{"name", "price"},
				},
			},
			Perturbations: []string{
				"Extract {name,price}: 'iphone   15  costs  $ 999 !' (JSON only)",
				"Pull product+price JSON from: iPhone-15 COSTS USD999.",
			},
		},
		{
			ID:         "A3",
			Category:   CategoryBaseline,
			Complexity: ComplexitySimple,
			Prompt:     "Normalize the date '12 October 2025' to ISO 'YYYY-MM-DD'. Output only the date.",
			Expected:   "2025-10-12",
			Judge:      JudgeSpec{Mode: ModeExact},
			Perturbations: []string{
				"Normalise the date 12 Oct 2025 to YYYY-MM-DD.",
				"Format date: 12th October, 2025 → ISO.",
			},
		},
		{
			ID:         "A4",
			Category:   CategoryBaseline,
			Complexity: ComplexitySimple,
			Prompt:     "What is the capital of France? Output a single word.",
			Judge:      JudgeSpec{Mode: ModePattern, Pattern: "^paris$"},
			Perturbations: []string{
				"Capital of FRANCE? one word.",
				"What is France's capital city?",
			},
		},

		// Reasoning: deduction, proportion, ordering, comprehension.
		{
			ID:         "B1",
			Category:   CategoryReasoning,
			Complexity: ComplexityMedium,
			Prompt:     "All A are B. All B are C. Are all A C? Answer 'Yes' or 'No' only.",
			Expected:   "Yes",
			Judge:      JudgeSpec{Mode: ModeExact},
			Perturbations: []string{
				"All A⊆B, all B⊆C. Are all A⊆C? Yes/No.",
				"Given A->B and B->C, conclude for A->C (Yes/No).",
			},
		},
		{
			ID:         "B2",
			Category:   CategoryReasoning,
			Complexity: ComplexityMedium,
			Prompt:     "A shop sells 3 apples for $5. How much do 12 apples cost? Output a number in dollars (no symbol).",
			Expected:   "20",
			Judge:      JudgeSpec{Mode: ModeExact},
			Perturbations: []string{
				"3 apples=$5. Price for 12? Number only.",
				"If 3 cost 5, what is the cost of 12?",
			},
		},
		{
			ID:         "B3",
			Category:   CategoryReasoning,
			Complexity: ComplexityMedium,
			Prompt:     "Tom is taller than Jim. Jim is taller than Anna. Who is the shortest? Output the name only.",
			Expected:   "Anna",
			Judge:      JudgeSpec{Mode: ModeExact},
			Perturbations: []string{
				"Tom>Jim>Anna in height. Shortest?",
				"Ordering: Tom taller than Jim; Jim taller than Anna. Shortest?",
			},
		},
		{
			ID:         "B4",
			Category:   CategoryReasoning,
			Complexity: ComplexityMedium,
			Prompt: "Passage: 'Lena moved from Oslo to Paris in 2022. In 2024, she started a bakery near the Seine. " +
				"Her sister Mia still lives in Oslo.' Question: In which city did Lena start a bakery? Output the city name only.",
			Expected: "Paris",
			Judge:    JudgeSpec{Mode: ModeExact},
			Perturbations: []string{
				"Lena→Paris (2022). In 2024 she opened a bakery by the Seine. Mia remains in Oslo. City of the bakery?",
				"Where did Lena start a bakery? One word.",
			},
		},

		// Tool use: every task declares tools, a whitelist, and a failure
		// probability for robustness trials.
		{
			ID:         "C1",
			Category:   CategoryTool,
			Complexity: ComplexityMedium,
			Prompt:     "Get today's weather in Rome (mocked), and return strictly JSON {temp, condition}.",
			Expected:   map[string]any{"temp": float64(28), "condition": "Sunny"},
			Judge: JudgeSpec{
				Mode: ModeStructured,
				Schema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"temp":      map[string]any{"type": "number"},
						"condition": map[string]any{"type": "string"},
					},
					"required": []any{"temp", "condition"},
				},
			},
			DeclaredTools:          []string{"weather_api"},
			ToolWhitelist:          []string{"weather_api"},
			ToolFailureProbability: 0.15,
			Perturbations: []string{
				"Rome weather today; JSON {temp,condition} only.",
				"Weather in Rome IT; JSON only.",
			},
		},
		{
			ID:         "C2",
			Category:   CategoryTool,
			Complexity: ComplexityMedium,
			Prompt:     "Fetch the mocked USD→EUR rate, then convert 100 USD to EUR. Return JSON {rate, eur}.",
			Expected:   map[string]any{"rate": 0.90, "eur": 90.0},
			Judge: JudgeSpec{
				Mode: ModeStructured,
				Schema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"rate": map[string]any{"type": "number"},
						"eur":  map[string]any{"type": "number"},
					},
					"required": []any{"rate", "eur"},
				},
			},
			DeclaredTools:          []string{"fx_api", "calculator"},
			ToolWhitelist:          []string{"fx_api", "calculator"},
			ToolFailureProbability: 0.15,
			Perturbations: []string{
				"USD to EUR rate (mock). Convert 100 USD. JSON {rate,eur}.",
				"Get fx rate then compute. JSON only.",
			},
		},
		{
			ID:         "C3",
			Category:   CategoryTool,
			Complexity: ComplexityMedium,
			Prompt:     "Using the mocked encyclopedia/wikipedia tool, answer: Who discovered penicillin? Return JSON {name, year}.",
			Expected:   map[string]any{"name": "Alexander Fleming", "year": float64(1928)},
			Judge: JudgeSpec{
				Mode: ModeStructured,
				Schema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name": map[string]any{"type": "string"},
						"year": map[string]any{"type": "number"},
					},
					"required": []any{"name", "year"},
				},
			},
			DeclaredTools:          []string{"wiki_search"},
			ToolWhitelist:          []string{"wiki_search"},
			ToolFailureProbability: 0.15,
			Perturbations: []string{
				"Penicillin discoverer? Return JSON {name,year}.",
				"Use encyclopedia tool; JSON only.",
			},
		},
		{
			ID:         "C4",
			Category:   CategoryTool,
			Complexity: ComplexityMedium,
			Prompt:     "Find a mocked USB-C cable under $10 and return JSON {url, price}.",
			Expected:   map[string]any{"url": "https://shop.example/u1", "price": 9.5},
			Judge: JudgeSpec{
				Mode: ModeStructured,
				Schema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"url":   map[string]any{"type": "string"},
						"price": map[string]any{"type": "number"},
					},
					"required": []any{"url", "price"},
				},
			},
			DeclaredTools:          []string{"shopping_search"},
			ToolWhitelist:          []string{"shopping_search"},
			ToolFailureProbability: 0.15,
			Perturbations: []string{
				"Find USB-C cable < $10. JSON {url,price}.",
				"USB-C cable cheap; JSON only.",
			},
		},

		// Planning: multi-step tasks with structured or pattern verification.
		{
			ID:         "D1",
			Category:   CategoryPlanning,
			Complexity: ComplexityComplex,
			Prompt:     "Measure exactly 4L using only a 3L and a 5L jug. Describe the steps briefly, ending with the final state.",
			Judge:      JudgeSpec{Mode: ModePattern, Pattern: `\b4\s*L\b`},
			Perturbations: []string{
				"Use 3L & 5L jars to obtain 4L. Provide steps.",
				"How to get exactly four litres with 3L/5L?",
			},
		},
		{
			ID:         "D2",
			Category:   CategoryPlanning,
			Complexity: ComplexityComplex,
			Prompt: "Plan a 2-day Rome itinerary including at least three attractions: Colosseum, Trevi Fountain, " +
				"Vatican Museums. Return JSON {day1:[...], day2:[...]}.",
			Judge: JudgeSpec{
				Mode:    ModePattern,
				Pattern: `(?s).*Colosseum.*Trevi Fountain.*Vatican Museums.*`,
			},
			Perturbations: []string{
				"2-day Rome plan incl. Colosseum, Trevi Fountain, Vatican Museums. JSON only.",
				"Rome itinerary (2 days). Include the three named sites. JSON {day1,day2}.",
			},
		},
		{
			ID:         "D3",
			Category:   CategoryPlanning,
			Complexity: ComplexityComplex,
			Prompt: "Grid path (5x5). S=start at (1,1); G=goal at (5,5); X=blocked. Grid rows:\n" +
				"S . . X .\n. X . . .\n. . X . .\n. . . . X\n. X . . G\n" +
				"Return JSON {path_len, path}, where path is a list of coordinates from start to goal. Use a shortest path.",
			Expected: map[string]any{"path_len": float64(8)},
			Judge: JudgeSpec{
				Mode:         ModeStructured,
				IgnoreFields: []string{"path"},
				Schema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"path_len": map[string]any{"type": "number"},
						"path":     map[string]any{"type": "array"},
					},
					"required": []any{"path_len", "path"},
				},
			},
			Perturbations: []string{
				"Find shortest path in the same grid; JSON {path_len,path}.",
				"Compute minimal steps from (1,1) to (5,5) avoiding X. JSON only.",
			},
		},
		{
			ID:         "D4",
			Category:   CategoryPlanning,
			Complexity: ComplexityComplex,
			Prompt: "Given availability (30-min slots):\n" +
				"A: 2025-09-22T10:00, 2025-09-22T10:30, 2025-09-22T11:00\n" +
				"B: 2025-09-22T10:00, 2025-09-22T11:00\n" +
				"C: 2025-09-22T10:00, 2025-09-22T10:30\n" +
				"Schedule a 30-min meeting for A,B,C. Return JSON {start, end, attendees} with attendees sorted alphabetically.",
			Expected: map[string]any{
				"start":     "2025-09-22T10:00",
				"end":       "2025-09-22T10:30",
				"attendees": []any{"A", "B", "C"},
			},
			Judge: JudgeSpec{
				Mode: ModeStructured,
				Schema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"start":     map[string]any{"type": "string"},
						"end":       map[string]any{"type": "string"},
						"attendees": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					},
					"required": []any{"start", "end", "attendees"},
				},
			},
			Perturbations: []string{
				"Same availabilities; schedule meeting JSON {start,end,attendees}.",
				"Find common 30-min slot for A/B/C; JSON only.",
			},
		},
	}
}
