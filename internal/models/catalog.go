package models

// ReviewPackage — позиция фиксированного каталога пакетов отзывов.
// Каталог живёт в памяти процесса и не хранится в базе.
type ReviewPackage struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	ReviewCount int     `json:"review_count"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

// Commission возвращает комиссию исполнителя за один отзыв из пакета.
func (p ReviewPackage) Commission() float64 {
	return p.Price / float64(p.ReviewCount)
}

// Packages — фиксированный каталог пакетов.
var Packages = []ReviewPackage{
	{
		ID:          "basic",
		Name:        "Basic",
		ReviewCount: 10,
		Price:       99,
		Description: "Perfect for small businesses just starting out",
	},
	{
		ID:          "standard",
		Name:        "Standard",
		ReviewCount: 25,
		Price:       199,
		Description: "Our most popular package for established businesses",
	},
	{
		ID:          "premium",
		Name:        "Premium",
		ReviewCount: 50,
		Price:       349,
		Description: "Maximum impact for serious business growth",
	},
}

// PackageByID ищет пакет в каталоге. Второе значение false, если пакет неизвестен.
func PackageByID(id string) (ReviewPackage, bool) {
	for _, p := range Packages {
		if p.ID == id {
			return p, true
		}
	}
	return ReviewPackage{}, false
}
