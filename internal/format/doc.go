// Package format contains the layout passes that normalize a CloudFormation
// template without rebuilding it: section reordering, default key synthesis,
// indentation normalization and trailing newline handling.
//
// Назначение: каждый проход работает на снимке документа и фиксирует
// результат через document.Commit, так что следующий проход видит свежие
// диапазоны. Байты, которых проход не касается, остаются как во входе.
// Не делает: IO, поиска файлов, загрузки конфигурации.
// Зависимости: internal/document, internal/syntax, internal/trace, internal/observ.
package format
