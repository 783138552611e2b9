package handler

import "github.com/iliyamo/game-rental/internal/model"

type credentialsReq struct {
	Username string `json:"username" validate:"required,min=4,max=20,username"`
	Password string `json:"password" validate:"required,min=8,max=30"`
}

type tokenResp struct {
	Token string `json:"token"`
}

// sortBy may arrive in a JSON body or as ?sortBy=.
type getGamesReq struct {
	SortBy model.SortBy `json:"sortBy" query:"sortBy" validate:"required,sortby"`
}

type searchReq struct {
	Title string `query:"title" validate:"required,max=50,searchtitle"`
}

type submitGameReq struct {
	Title    string         `json:"title" validate:"required,min=2,max=50,gametitle"`
	Genre    model.Genre    `json:"genre" validate:"required,genre"`
	Platform model.Platform `json:"platform" validate:"required,platform"`
}

type submitGameResp struct {
	Title    string         `json:"title"`
	Genre    model.Genre    `json:"genre"`
	Platform model.Platform `json:"platform"`
}

type gamesResp struct {
	Games []model.GameView `json:"games"`
}

type rentGameReq struct {
	GameID uint64 `json:"gameId" validate:"required"`
}

type rentGameResp struct {
	RentalID   uint64 `json:"rentalId"`
	GameTitle  string `json:"gameTitle"`
	DateRented string `json:"dateRented"`
}

// rentalStatus may arrive in a JSON body or as ?rentalStatus=.
type getRentalsReq struct {
	RentalStatus model.RentalStatus `json:"rentalStatus" query:"rentalStatus" validate:"required,rentalstatus"`
}

type rentalsResp struct {
	Rentals []model.RentalView `json:"rentals"`
}

type returnGameReq struct {
	RentalID uint64 `json:"rentalId" validate:"required"`
}
