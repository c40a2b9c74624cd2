package api

import "bank-cards-go/internal/models"

const viewDateLayout = "2006-01-02"

func toCardView(card *models.Card) models.CardView {
	return models.CardView{
		Id:           card.Id,
		MaskedNumber: card.MaskedNumber(),
		Owner:        card.Owner,
		ExpiryDate:   card.ExpiryDate.Format(viewDateLayout),
		Status:       card.Status,
		Balance:      card.Balance,
		CreatedAt:    card.CreatedAt,
	}
}

func toCardViews(cards []models.Card) []models.CardView {
	views := make([]models.CardView, 0, len(cards))
	for i := range cards {
		views = append(views, toCardView(&cards[i]))
	}
	return views
}
