// Package memory implements the session's short-term memory: four
// independent bounded FIFO windows over user messages, agent responses,
// classifier outputs and mode transitions. Overflow silently evicts the
// oldest entry; eviction is ring-buffer discipline, not an error condition.
package memory
