// Package syntax turns YAML template text into a lossless concrete syntax tree
// and prints it back.
//
// Назначение: адаптер дерева для форматтера. Every byte of the input belongs
// to exactly one leaf (key, separator, scalar, indicator, comment, blank line
// or marker), so Print(src, Parse(src)) reproduces src unchanged.
//
// Structure comes from gopkg.in/yaml.v3 node positions; byte ranges come from
// a line classifier over the raw text. Layouts the builder does not model
// (flow collections, explicit keys, compact nested sequences) collapse into
// opaque scalar leaves that no pass looks inside.
//
// Не делает: семантической проверки шаблонов, IO, форматирования.
package syntax
