package algorithms

// Индекс Жаккара = |A ∩ B| / |A ∪ B|
// Значение от 0.0 (нет общих элементов) до 1.0 (полное совпадение)

// StringSet строит множество из списка токенов
func StringSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// JaccardSets вычисляет индекс Жаккара для двух множеств.
// Два пустых множества считаются несравнимыми и дают 0.
func JaccardSets(set1, set2 map[string]struct{}) float64 {
	if len(set1) == 0 || len(set2) == 0 {
		return 0.0
	}

	// Итерируем по меньшему множеству
	small, large := set1, set2
	if len(small) > len(large) {
		small, large = large, small
	}

	intersection := 0
	for elem := range small {
		if _, ok := large[elem]; ok {
			intersection++
		}
	}

	union := len(set1) + len(set2) - intersection
	return float64(intersection) / float64(union)
}

// JaccardTokens индекс Жаккара для двух списков токенов
func JaccardTokens(tokens1, tokens2 []string) float64 {
	return JaccardSets(StringSet(tokens1), StringSet(tokens2))
}

// JaccardFromCounts индекс Жаккара по готовым мощностям множеств
func JaccardFromCounts(intersection, size1, size2 int) float64 {
	union := size1 + size2 - intersection
	if union <= 0 || intersection <= 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

// CommonElements возвращает общие элементы двух множеств в порядке первого списка
func CommonElements(tokens1, tokens2 []string) []string {
	set2 := StringSet(tokens2)
	seen := make(map[string]struct{})
	var common []string
	for _, t := range tokens1 {
		if _, ok := set2[t]; !ok {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		common = append(common, t)
	}
	return common
}
