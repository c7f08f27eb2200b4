// Package batch is the orchestration core: it drives a list of work items
// through the OCR backend with bounded concurrency and collects one terminal
// result per item.
//
// Each item moves through pending -> in_flight -> {succeeded | retry_wait ->
// in_flight | failed}. A terminal failure on one item never halts the others,
// retrying items wait out their delay without holding a concurrency slot, and
// cancelling the batch context promotes every non-terminal item to a cancelled
// failure while already-issued backend calls run out their own timeout in the
// background with their results discarded. The final BatchResult always lists
// items in input order regardless of completion order.
package batch
