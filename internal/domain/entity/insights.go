package entity

// Insights — текстовый результат анализа снимка.
type Insights struct {
	Text string
}
