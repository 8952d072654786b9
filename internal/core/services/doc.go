// Package services implements the driving port interfaces.
// Services contain the pipeline logic (ingestion, retrieval, project
// lifecycle) and orchestrate calls to driven ports (adapters).
package services
