package exec

import (
	"testing"

	"aslharness/internal/states"
)

func TestBatchItemsSplitsByMaxItemsPerBatch(t *testing.T) {
	items := []interface{}{"a", "b", "c", "d", "e"}
	batches := batchItems(items, &states.ItemBatcher{MaxItemsPerBatch: 2})

	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}
	first := batches[0].(map[string]interface{})["Items"].([]interface{})
	if len(first) != 2 {
		t.Errorf("expected first batch to hold 2 items, got %d", len(first))
	}
	last := batches[2].(map[string]interface{})["Items"].([]interface{})
	if len(last) != 1 {
		t.Errorf("expected last batch to hold the remaining 1 item, got %d", len(last))
	}
}

func TestBatchItemsSplitsByMaxInputBytesPerBatch(t *testing.T) {
	// Each quoted one-character string serializes to 3 bytes ("x").
	items := []interface{}{"a", "b", "c", "d"}
	batches := batchItems(items, &states.ItemBatcher{MaxInputBytesPerBatch: 6})

	for _, b := range batches {
		batchItems := b.(map[string]interface{})["Items"].([]interface{})
		if len(batchItems) > 2 {
			t.Errorf("expected at most 2 three-byte items per 6-byte cap, got %d", len(batchItems))
		}
	}
	total := 0
	for _, b := range batches {
		total += len(b.(map[string]interface{})["Items"].([]interface{}))
	}
	if total != len(items) {
		t.Errorf("expected all %d items distributed across batches, got %d", len(items), total)
	}
}

func TestBatchItemsNeverProducesEmptyBatchForOversizedItem(t *testing.T) {
	items := []interface{}{"this-string-is-longer-than-the-cap"}
	batches := batchItems(items, &states.ItemBatcher{MaxInputBytesPerBatch: 1})

	if len(batches) != 1 {
		t.Fatalf("expected a single batch even though the item exceeds the byte cap, got %d", len(batches))
	}
	got := batches[0].(map[string]interface{})["Items"].([]interface{})
	if len(got) != 1 {
		t.Errorf("expected the oversized item still placed alone in its batch, got %d items", len(got))
	}
}

func TestBatchItemsAppliesBatchInputToEveryBatch(t *testing.T) {
	items := []interface{}{"a", "b", "c"}
	batches := batchItems(items, &states.ItemBatcher{
		MaxItemsPerBatch: 1,
		BatchInput:       map[string]interface{}{"JobId": "job-1"},
	})

	for _, b := range batches {
		m := b.(map[string]interface{})
		if m["JobId"] != "job-1" {
			t.Errorf("expected BatchInput merged into every batch, got %#v", m)
		}
	}
}
