package algorithms

// DamerauLevenshtein вычисляет расстояние Дамерау-Левенштейна.
// В отличие от Левенштейна учитывает транспозицию соседних символов,
// что важно для опечаток в названиях производителей.
type DamerauLevenshtein struct{}

// NewDamerauLevenshtein создает новый вычислитель расстояния Дамерау-Левенштейна
func NewDamerauLevenshtein() *DamerauLevenshtein {
	return &DamerauLevenshtein{}
}

// Distance минимальное количество операций (вставка, удаление, замена, транспозиция)
// для преобразования одной строки в другую. Работает по рунам.
func (dl *DamerauLevenshtein) Distance(str1, str2 string) int {
	r1 := []rune(str1)
	r2 := []rune(str2)
	len1 := len(r1)
	len2 := len(r2)

	if len1 == 0 {
		return len2
	}
	if len2 == 0 {
		return len1
	}

	// Матрица (len1+2) x (len2+2), первая строка и столбец хранят maxDist
	matrix := make([][]int, len1+2)
	for i := range matrix {
		matrix[i] = make([]int, len2+2)
	}

	maxDist := len1 + len2
	matrix[0][0] = maxDist
	for i := 0; i <= len1; i++ {
		matrix[i+1][0] = maxDist
		matrix[i+1][1] = i
	}
	for j := 0; j <= len2; j++ {
		matrix[0][j+1] = maxDist
		matrix[1][j+1] = j
	}

	// Последнее вхождение каждого символа в str1
	da := make(map[rune]int)

	for i := 1; i <= len1; i++ {
		db := 0
		for j := 1; j <= len2; j++ {
			i1 := da[r2[j-1]]
			j1 := db
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
				db = j
			}

			matrix[i+1][j+1] = min(
				matrix[i+1][j]+1,                   // вставка
				matrix[i][j+1]+1,                   // удаление
				matrix[i][j]+cost,                  // замена
				matrix[i1][j1]+(i-i1-1)+1+(j-j1-1), // транспозиция
			)
		}
		da[r1[i-1]] = i
	}

	return matrix[len1+1][len2+1]
}

// Similarity возвращает 1 - distance/maxLen, от 0.0 (разные) до 1.0 (идентичные)
func (dl *DamerauLevenshtein) Similarity(str1, str2 string) float64 {
	maxLen := max(len([]rune(str1)), len([]rune(str2)))
	if maxLen == 0 {
		return 1.0
	}

	similarity := 1.0 - float64(dl.Distance(str1, str2))/float64(maxLen)
	if similarity < 0.0 {
		similarity = 0.0
	}
	return similarity
}
