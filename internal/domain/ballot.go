package domain

import "strings"

// Ballot é o conteúdo de um voto: QuizVote ou WordCloudVote, nunca os dois.
type Ballot interface {
	SlideType() SlideType
	ballot()
}

type QuizVote struct {
	OptionID OptionID
}

func (QuizVote) SlideType() SlideType { return SlideTypeQuiz }
func (QuizVote) ballot()              {}

type WordCloudVote struct {
	Text string
}

func (WordCloudVote) SlideType() SlideType { return SlideTypeWordCloud }
func (WordCloudVote) ballot()              {}

// Normalized devolve a chave de comparação da palavra: sem espaços nas bordas e em minúsculas.
func (v WordCloudVote) Normalized() string {
	return NormalizeWord(v.Text)
}

func (v WordCloudVote) Display() string {
	return strings.TrimSpace(v.Text)
}

const maxWordLength = 80

// NewBallot converte o payload da requisição no voto tipado, rejeitando "nenhum" e "ambos".
func NewBallot(optionID, text string) (Ballot, error) {
	optionID = strings.TrimSpace(optionID)
	hasText := strings.TrimSpace(text) != ""

	switch {
	case optionID != "" && hasText:
		return nil, NewValidationError("vote", "informe option_id ou text, nao ambos")
	case optionID != "":
		return QuizVote{OptionID: OptionID(optionID)}, nil
	case hasText:
		if len([]rune(strings.TrimSpace(text))) > maxWordLength {
			return nil, NewValidationError("text", "texto muito longo")
		}
		return WordCloudVote{Text: text}, nil
	default:
		return nil, NewValidationError("vote", "option_id ou text obrigatorio")
	}
}

func NormalizeWord(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
