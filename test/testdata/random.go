package testdata

import "github.com/brianvoe/gofakeit/v7"

func RandomName() string {
	return gofakeit.AppName()
}

func RandomDescription() string {
	return gofakeit.Sentence(8)
}

func RandomEmail() string {
	return gofakeit.Email()
}

func RandomPersonName() string {
	return gofakeit.Name()
}
