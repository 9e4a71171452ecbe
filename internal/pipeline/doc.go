// Package pipeline wires the scrape, identity, merge and archive stages
// into the operations the CLI exposes. Every run takes an exclusive file
// lock so two invocations never race on the dataset, loads the dataset
// whole, transforms it, and saves it whole.
package pipeline
