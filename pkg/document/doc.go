/*
Package document implements the flow interchange format.

A flow document is a single JSON (or YAML) object of shape
{ "start": "...", "nodes": [...], "edges": [...] } as written by the visual
editor. Editor-only data (node positions, edge ids) is preserved so that a
document round-trips losslessly through Decode and Encode.

Decoding performs structural checks only (kinds, id uniqueness, path
requirements). Referential integrity of edges is left to the validator and
to the engine, which tolerate partially wired flows.
*/
package document
