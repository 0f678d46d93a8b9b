// Package core defines the shared data model of PersonaMesh: the Envelope
// passed through the per-turn pipeline, the conversation Mode enumeration,
// the classifier / meta / stability / flow signal bundles, plan structures
// and the handler contract. Higher level packages (router, engine, persona,
// planning, ...) depend on core; core depends on nothing but the standard
// library and uuid.
package core
