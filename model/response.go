package model

// Response is the answer recorded for one survey item: a PromptResponse or
// a RepeatableSetResponse.
type Response interface {
	Item() SurveyItem
	// NoResponse is empty when the item was actually answered.
	NoResponse() NoResponse
	toJSON(withID bool) map[string]any
}

// PromptResponse is the coerced answer to a prompt.
type PromptResponse struct {
	prompt     Prompt
	iteration  int
	value      any
	noResponse NoResponse
}

// NewPromptResponse validates value against prompt. Prompts inside a
// repeatable set need the 1-based iteration they were answered in; an
// iteration of 0 means none and is ignored for top-level prompts.
func NewPromptResponse(prompt Prompt, iteration int, value any) (*PromptResponse, error) {
	if iteration < 0 {
		return nil, Errorf(CodeResponseShape, "prompt %q answered in negative iteration %d", prompt.ID(), iteration)
	}
	if prompt.ParentID() == "" {
		iteration = 0
	} else if iteration == 0 {
		return nil, Errorf(CodeResponseShape, "prompt %q belongs to repeatable set %q and needs an iteration", prompt.ID(), prompt.ParentID())
	}

	v, err := prompt.ValidateValue(value)
	if err != nil {
		return nil, err
	}
	r := &PromptResponse{prompt: prompt, iteration: iteration}
	if nr, ok := v.(NoResponse); ok {
		r.noResponse = nr
	} else {
		r.value = v
	}
	return r, nil
}

func (r *PromptResponse) Item() SurveyItem       { return r.prompt }
func (r *PromptResponse) Prompt() Prompt         { return r.prompt }
func (r *PromptResponse) NoResponse() NoResponse { return r.noResponse }

// Iteration is 0 for prompts outside repeatable sets.
func (r *PromptResponse) Iteration() int { return r.iteration }

// Value is the coerced value, nil when NoResponse is set.
func (r *PromptResponse) Value() any { return r.value }

func (r *PromptResponse) toJSON(withID bool) map[string]any {
	out := map[string]any{}
	if withID {
		out["prompt_id"] = r.prompt.ID()
	}
	if r.noResponse != "" {
		out["value"] = string(r.noResponse)
	} else {
		out["value"] = r.value
	}
	return out
}

// RepeatableSetResponse holds every iteration of a repeatable set, or the
// reason there are none.
type RepeatableSetResponse struct {
	set        *RepeatableSet
	noResponse NoResponse
	iterations []map[int]Response
}

// NewRepeatableSetResponse takes either a NoResponse or the iterations in
// order, each mapping child index to the child's response.
func NewRepeatableSetResponse(set *RepeatableSet, noResponse NoResponse, iterations []map[int]Response) (*RepeatableSetResponse, error) {
	if noResponse != "" {
		if noResponse != NotDisplayed {
			return nil, Errorf(CodeResponseShape, "repeatable set %q cannot be %s", set.ID(), noResponse)
		}
		if len(iterations) > 0 {
			return nil, Errorf(CodeResponseShape, "repeatable set %q is %s but has responses", set.ID(), noResponse)
		}
		return &RepeatableSetResponse{set: set, noResponse: noResponse}, nil
	}

	copied := make([]map[int]Response, len(iterations))
	for i, iteration := range iterations {
		copied[i] = make(map[int]Response, len(iteration))
		for index, resp := range iteration {
			child, ok := set.items.At(index)
			if !ok || child.ID() != resp.Item().ID() {
				return nil, Errorf(CodeResponseShape, "repeatable set %q iteration %d has a response for %q at index %d",
					set.ID(), i+1, resp.Item().ID(), index)
			}
			if pr, ok := resp.(*PromptResponse); ok && pr.iteration != i+1 {
				return nil, Errorf(CodeResponseShape, "prompt %q answered in iteration %d, filed under %d",
					child.ID(), pr.iteration, i+1)
			}
			copied[i][index] = resp
		}
	}
	return &RepeatableSetResponse{set: set, iterations: copied}, nil
}

func (r *RepeatableSetResponse) Item() SurveyItem              { return r.set }
func (r *RepeatableSetResponse) RepeatableSet() *RepeatableSet { return r.set }
func (r *RepeatableSetResponse) NoResponse() NoResponse        { return r.noResponse }
func (r *RepeatableSetResponse) Iterations() int               { return len(r.iterations) }

// Iteration returns the responses of the 1-based iteration n, ordered by
// child index.
func (r *RepeatableSetResponse) Iteration(n int) []Response {
	if n < 1 || n > len(r.iterations) {
		return nil
	}
	iteration := r.iterations[n-1]
	out := make([]Response, 0, len(iteration))
	for _, index := range sortedKeys(iteration) {
		out = append(out, iteration[index])
	}
	return out
}

func (r *RepeatableSetResponse) toJSON(withID bool) map[string]any {
	out := map[string]any{
		"skipped":       r.noResponse == Skipped,
		"not_displayed": r.noResponse == NotDisplayed,
	}
	if withID {
		out["repeatable_set_id"] = r.set.ID()
	}
	iterations := make([][]map[string]any, len(r.iterations))
	for i := range r.iterations {
		responses := r.Iteration(i + 1)
		iterations[i] = make([]map[string]any, len(responses))
		for j, resp := range responses {
			iterations[i][j] = resp.toJSON(true)
		}
	}
	out["responses"] = iterations
	return out
}

// ResponseToJSON projects any response.
func ResponseToJSON(r Response, withID bool) map[string]any {
	return r.toJSON(withID)
}
