package algorithms

// CosineSimilarity косинусная мера для двух разреженных векторов.
// Векторы L2-нормированы, поэтому мера равна скалярному произведению.
// Результат ограничен отрезком [0, 1], чтобы погрешность округления не выводила за границы.
func CosineSimilarity(a, b FeatureVector) float64 {
	var dot float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			dot += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return Clamp01(dot)
}

// Clamp01 ограничивает значение отрезком [0, 1]
func Clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}
