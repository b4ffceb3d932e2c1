package algorithms

// Posting вхождение термина в документ корпуса
type Posting struct {
	Doc    int
	Weight float64
}

// InvertedIndex хранит векторы корпуса в виде списков вхождений по терминам.
// Оценка запроса против всего корпуса выполняется одним разреженным
// умножением матрицы на вектор без перебора кандидатов.
type InvertedIndex struct {
	postings [][]Posting
	docCount int
}

// ScoreBoard результат одного прохода по индексу
type ScoreBoard struct {
	// Dots косинусная мера для каждого документа корпуса
	Dots []float64
	// Shared число различных терминов запроса, найденных в документе
	Shared []int
	// Touched документы с ненулевым пересечением в порядке первого попадания
	Touched []int
}

// NewInvertedIndex строит индекс по векторам корпуса.
// vocabSize задает число строк (терминов) матрицы.
func NewInvertedIndex(vectors []FeatureVector, vocabSize int) *InvertedIndex {
	idx := &InvertedIndex{
		postings: make([][]Posting, vocabSize),
		docCount: len(vectors),
	}
	for doc, v := range vectors {
		for k, term := range v.Indices {
			idx.postings[term] = append(idx.postings[term], Posting{Doc: doc, Weight: v.Values[k]})
		}
	}
	return idx
}

// DocCount количество документов в индексе
func (idx *InvertedIndex) DocCount() int {
	return idx.docCount
}

// DocFreq число документов, содержащих термин
func (idx *InvertedIndex) DocFreq(term int) int {
	if term < 0 || term >= len(idx.postings) {
		return 0
	}
	return len(idx.postings[term])
}

// Score прогоняет запрос через индекс
func (idx *InvertedIndex) Score(query FeatureVector) ScoreBoard {
	board := ScoreBoard{
		Dots:   make([]float64, idx.docCount),
		Shared: make([]int, idx.docCount),
	}
	for k, term := range query.Indices {
		if term < 0 || term >= len(idx.postings) {
			continue
		}
		qw := query.Values[k]
		for _, p := range idx.postings[term] {
			if board.Shared[p.Doc] == 0 {
				board.Touched = append(board.Touched, p.Doc)
			}
			board.Dots[p.Doc] += qw * p.Weight
			board.Shared[p.Doc]++
		}
	}
	for _, doc := range board.Touched {
		board.Dots[doc] = Clamp01(board.Dots[doc])
	}
	return board
}
