package exec

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"aslharness/internal/expr"
	"aslharness/internal/mock"
	"aslharness/internal/states"
	"aslharness/internal/strategy"
)

// execMap implements spec §4.7 for both Map sub-variants. Inline Map
// iterations may read outer variables (shallow-copy inherit, never write
// back); Distributed Map iterations run fully isolated. Results are
// always placed at positions matching source iteration order regardless
// of completion order.
func execMap(ctx context.Context, ectx *execContext, input interface{}, st *states.State, rc *strategy.RunContext) (interface{}, string, error) {
	items, err := resolveItems(ctx, ectx, st, input, rc)
	if err != nil {
		return nil, "", err
	}

	if len(items) == 0 {
		ectx.Recorder.RecordMap(MapExecution{Type: "Map", State: st.Name, IterationCount: 0, ItemCount: 0, ResultCount: 0})
		return []interface{}{}, "", nil
	}

	distributed := st.ItemProcessor.ProcessorConfig.Mode == states.ModeDistributed

	if distributed && st.ItemBatcher != nil {
		return execDistributedBatched(ctx, ectx, st, input, rc, items)
	}

	outputs, paths, failures, err := runIterations(ctx, ectx, st, input, rc, items, distributed)
	if err != nil {
		return nil, "", err
	}

	if distributed {
		if tolErr := checkToleratedFailure(st, input, len(items), failures); tolErr != nil {
			return nil, "", tolErr
		}
	} else if failures > 0 {
		return nil, "", fmt.Errorf("%w: Item processing failed", states.ErrItemProcessingFail)
	}

	ectx.Recorder.RecordMap(MapExecution{
		Type: "Map", State: st.Name, IterationCount: len(items), IterationPaths: paths,
		ProcessorMode: string(st.ItemProcessor.ProcessorConfig.Mode), ItemCount: len(items), ResultCount: len(outputs),
	})

	if st.ResultWriter != nil {
		return map[string]interface{}{
			"ProcessedItemCount":  len(outputs),
			"ResultWriterDetails": resultWriterDetails(st.ResultWriter),
		}, "", nil
	}

	return outputs, "", nil
}

// resolveItems resolves the Map state's source array per spec §4.7 step 2
// and §4.8's Distributed Map ItemReader extension.
func resolveItems(ctx context.Context, ectx *execContext, st *states.State, input interface{}, rc *strategy.RunContext) ([]interface{}, error) {
	if st.ItemProcessor != nil && st.ItemProcessor.ProcessorConfig.Mode == states.ModeDistributed && st.ItemReader != nil {
		resp, err := ectx.Env.Mock.GetMockResponse(st.Name, input, mock.DefaultHint{Type: st.Type})
		if err != nil {
			return nil, err
		}
		arr, ok := resp.([]interface{})
		if !ok {
			return nil, fmt.Errorf("exec: itemReader for %q did not return an array", st.Name)
		}
		return arr, nil
	}

	if st.QueryLanguage == states.JSONata {
		switch v := st.Items.(type) {
		case string:
			stripped, wrapped := expr.StripWrapper(v)
			if !wrapped {
				return nil, fmt.Errorf("exec: Items expression must be wrapped in {%% %%}")
			}
			bindings := map[string]interface{}{"states": map[string]interface{}{"input": input}}
			for k, vv := range rc.Variables {
				bindings[k] = vv
			}
			result, err := ectx.Env.JSONata.Eval(ctx, stripped, input, bindings)
			if err != nil {
				return nil, err
			}
			arr, _ := result.([]interface{})
			return arr, nil
		case []interface{}:
			return v, nil
		default:
			return wrapAsArray(input), nil
		}
	}

	if st.ItemsPath == "" || st.ItemsPath == "$" {
		return wrapAsArray(input), nil
	}
	val, ok := expr.GetPath(input, st.ItemsPath)
	if !ok {
		// Boundary behavior (spec §8): nonexistent ItemsPath -> [].
		return []interface{}{}, nil
	}
	arr, ok := val.([]interface{})
	if !ok {
		return nil, fmt.Errorf("exec: ItemsPath %q for %q did not select an array", st.ItemsPath, st.Name)
	}
	return arr, nil
}

func wrapAsArray(input interface{}) []interface{} {
	if arr, ok := input.([]interface{}); ok {
		return arr
	}
	return []interface{}{input}
}

// runIterations dispatches each item to the item-processor runner,
// bounding concurrency by MaxConcurrency (spec §4.7) and, for Inline Map
// with non-empty outer variables, degrading to sequential execution
// (spec §9's documented open question / pragmatic policy).
func runIterations(ctx context.Context, ectx *execContext, st *states.State, originalInput interface{}, rc *strategy.RunContext, items []interface{}, distributed bool) (outputs []interface{}, paths [][]string, failures int, err error) {
	outputs = make([]interface{}, len(items))
	paths = make([][]string, len(items))

	maxConcurrency := st.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = len(items)
	}
	if !distributed && len(rc.Variables) > 0 {
		maxConcurrency = 1 // sequential degradation, spec §4.7/§9
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)

	var failCount atomic.Int32

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			iterInput, err := buildIterationInput(gctx, ectx, st, originalInput, rc, item, i)
			if err != nil {
				return err
			}

			var iterVars map[string]interface{}
			if distributed {
				iterVars = map[string]interface{}{}
			} else {
				iterVars = deepCopyMap(rc.Variables)
			}

			idx := i
			iterEctx := &execContext{
				Env: ectx.Env, Recorder: ectx.Recorder, StepLimit: ectx.StepLimit,
				ParentState: st.Name, IterationIndex: &idx,
			}
			procDef := st.ItemProcessor.AsDefinition(st.QueryLanguage)
			out, path, _, err := runSequence(gctx, procDef, iterInput, iterVars, iterEctx)
			paths[idx] = path
			if err != nil {
				failCount.Add(1)
				return nil // iteration failures are tallied; tolerance/strict check happens after the group completes
			}
			outputs[idx] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, 0, err
	}
	return outputs, paths, int(failCount.Load()), nil
}

// buildIterationInput produces the per-iteration input per spec §4.7
// step 3.
func buildIterationInput(ctx context.Context, ectx *execContext, st *states.State, originalInput interface{}, rc *strategy.RunContext, item interface{}, index int) (interface{}, error) {
	mapCtx := expr.NewContext(st.Name).WithMapItem(index, item)

	if st.QueryLanguage == states.JSONata {
		if st.ItemSelector == nil {
			return item, nil
		}
		bindings := map[string]interface{}{"states": map[string]interface{}{"input": originalInput, "context": mapCtx.ToMap()}}
		for k, v := range rc.Variables {
			bindings[k] = v
		}
		return evalJSONataValue(ctx, ectx, st.ItemSelector, item, bindings)
	}

	tmpl := st.ItemSelector
	if tmpl == nil {
		tmpl = st.Parameters
	}
	if tmpl == nil {
		return item, nil
	}
	bindings := expr.Bindings{Context: mapCtx, Variables: rc.Variables}
	return expr.EvalPayloadTemplate(tmpl, item, bindings)
}

func evalJSONataValue(ctx context.Context, ectx *execContext, tmpl map[string]interface{}, data interface{}, bindings map[string]interface{}) (interface{}, error) {
	out := make(map[string]interface{}, len(tmpl))
	for k, v := range tmpl {
		if s, ok := v.(string); ok {
			if stripped, wrapped := expr.StripWrapper(s); wrapped {
				val, err := ectx.Env.JSONata.Eval(ctx, stripped, data, bindings)
				if err != nil {
					return nil, err
				}
				out[k] = val
				continue
			}
			out[k] = s
			continue
		}
		out[k] = v
	}
	return out, nil
}

// checkToleratedFailure implements spec §4.7's Distributed Map tolerance
// rule: fails overall only when the failure count strictly exceeds the
// threshold; with none set, any failure fails the map.
func checkToleratedFailure(st *states.State, input interface{}, total int, failures int) error {
	if failures == 0 {
		return nil
	}
	count := st.ToleratedFailureCount
	pct := st.ToleratedFailurePercentage
	if st.ToleratedFailureCountPath != "" {
		if v, ok := expr.GetPath(input, st.ToleratedFailureCountPath); ok {
			if f, ok := v.(float64); ok {
				n := int(f)
				count = &n
			}
		}
	}
	if st.ToleratedFailurePercentagePath != "" {
		if v, ok := expr.GetPath(input, st.ToleratedFailurePercentagePath); ok {
			if f, ok := v.(float64); ok {
				pct = &f
			}
		}
	}
	if count == nil && pct == nil {
		return fmt.Errorf("%w: Item processing failed", states.ErrItemProcessingFail)
	}
	if count != nil && failures > *count {
		return fmt.Errorf("%w: Item processing failed: tolerated failure count exceeded", states.ErrItemProcessingFail)
	}
	if pct != nil {
		actualPct := float64(failures) / float64(total) * 100
		if actualPct > *pct {
			return fmt.Errorf("%w: Item processing failed: tolerated failure percentage exceeded", states.ErrItemProcessingFail)
		}
	}
	return nil
}

// execDistributedBatched groups items into ItemBatcher-shaped batches
// (spec §4.7's Batching extra) before dispatch, treating each batch as a
// single iteration unit.
func execDistributedBatched(ctx context.Context, ectx *execContext, st *states.State, originalInput interface{}, rc *strategy.RunContext, items []interface{}) (interface{}, string, error) {
	batches := batchItems(items, st.ItemBatcher)

	outputs, paths, failures, err := runIterations(ctx, ectx, st, originalInput, rc, batches, true)
	if err != nil {
		return nil, "", err
	}
	if tolErr := checkToleratedFailure(st, originalInput, len(batches), failures); tolErr != nil {
		return nil, "", tolErr
	}

	ectx.Recorder.RecordMap(MapExecution{
		Type: "Map", State: st.Name, IterationCount: len(batches), IterationPaths: paths,
		ProcessorMode: string(st.ItemProcessor.ProcessorConfig.Mode), ItemCount: len(items), ResultCount: len(outputs),
	})

	if st.ResultWriter != nil {
		return map[string]interface{}{
			"ProcessedItemCount":  len(items),
			"ResultWriterDetails": resultWriterDetails(st.ResultWriter),
		}, "", nil
	}
	return outputs, "", nil
}

// batchItems groups items per spec §4.7's Batching extra: each batch holds
// at most MaxItemsPerBatch items and, if MaxInputBytesPerBatch is set, at
// most that many bytes of serialized item content. A batch always gets at
// least one item even if that item alone exceeds the byte cap, since a
// batch can never be empty.
func batchItems(items []interface{}, batcher *states.ItemBatcher) []interface{} {
	maxPerBatch := batcher.MaxItemsPerBatch
	if maxPerBatch <= 0 {
		maxPerBatch = len(items)
	}
	maxBytes := batcher.MaxInputBytesPerBatch

	var batches []interface{}
	current := make([]interface{}, 0, maxPerBatch)
	currentBytes := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		batch := map[string]interface{}{"Items": current}
		for k, v := range batcher.BatchInput {
			batch[k] = v
		}
		batches = append(batches, batch)
		current = make([]interface{}, 0, maxPerBatch)
		currentBytes = 0
	}

	for _, item := range items {
		itemBytes := 0
		if maxBytes > 0 {
			itemBytes = itemByteSize(item)
		}
		if len(current) > 0 && (len(current) >= maxPerBatch || (maxBytes > 0 && currentBytes+itemBytes > maxBytes)) {
			flush()
		}
		current = append(current, item)
		currentBytes += itemBytes
	}
	flush()

	return batches
}

// itemByteSize is the serialized size of a single item used against
// MaxInputBytesPerBatch; an item that fails to marshal contributes zero so
// batching still proceeds by count alone for that item.
func itemByteSize(item interface{}) int {
	raw, err := json.Marshal(item)
	if err != nil {
		return 0
	}
	return len(raw)
}

func resultWriterDetails(rw *states.ResultWriter) map[string]interface{} {
	bucket := ""
	prefix := ""
	if rw.Parameters != nil {
		if b, ok := rw.Parameters["Bucket"].(string); ok {
			bucket = b
		}
		if p, ok := rw.Parameters["Prefix"].(string); ok {
			prefix = p
		}
	}
	return map[string]interface{}{"Bucket": bucket, "Prefix": prefix}
}
