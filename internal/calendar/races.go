package calendar

import "github.com/yourusername/derby-sim/internal/models"

const (
	locTokyo     = "Tokyo"
	locNakayama  = "Nakayama"
	locKyoto     = "Kyoto"
	locHanshin   = "Hanshin"
	locChukyo    = "Chukyo"
	locNiigata   = "Niigata"
	locHakodate  = "Hakodate"
	locSapporo   = "Sapporo"
	locKokura    = "Kokura"
	locFukushima = "Fukushima"
)

func g1(id, name string, week int, surface models.Surface, distance int, loc string, purse int64, cats ...models.RaceCategory) models.RaceEvent {
	return models.RaceEvent{
		ID:         id,
		Name:       name,
		Grade:      models.GradeG1,
		Week:       week,
		Surface:    surface,
		Distance:   distance,
		Location:   loc,
		Purse:      purse,
		Categories: cats,
	}
}

func graded(grade models.Grade, id, name string, week int, surface models.Surface, distance int, loc string, purse int64) models.RaceEvent {
	return models.RaceEvent{
		ID:       id,
		Name:     name,
		Grade:    grade,
		Week:     week,
		Surface:  surface,
		Distance: distance,
		Location: loc,
		Purse:    purse,
	}
}

func withTrials(r models.RaceEvent, trials ...string) models.RaceEvent {
	r.TrialRaces = trials
	return r
}

// DefaultRaces returns a fresh copy of the built-in calendar table
func DefaultRaces() []models.RaceEvent {
	turf, dirt := models.SurfaceTurf, models.SurfaceDirt
	classic := []models.RaceCategory{models.CategoryClassic, models.CategoryTripleCrown}

	return []models.RaceEvent{
		// G1
		g1("february-stakes", "February Stakes", 7, dirt, 1600, locTokyo, 2000),
		g1("takamatsunomiya-kinen", "Takamatsunomiya Kinen", 13, turf, 1200, locChukyo, 2500),
		g1("osaka-hai", "Osaka Hai", 14, turf, 2000, locHanshin, 3000),
		withTrials(g1("satsuki-sho", "Satsuki Sho", 15, turf, 2000, locNakayama, 2500, classic...), "Yayoi Sho"),
		g1("tenno-sho-spring", "Tenno Sho (Spring)", 17, turf, 3200, locKyoto, 3000),
		g1("victoria-mile", "Victoria Mile", 19, turf, 1600, locTokyo, 2000),
		withTrials(g1("tokyo-yushun", "Tokyo Yushun", 22, turf, 2400, locTokyo, 3000, classic...), "Aoba Sho"),
		g1("yasuda-kinen", "Yasuda Kinen", 23, turf, 1600, locTokyo, 2500),
		g1("takarazuka-kinen", "Takarazuka Kinen", 25, turf, 2200, locHanshin, 3000, models.CategoryGrandPrix),
		g1("sprinters-stakes", "Sprinters Stakes", 39, turf, 1200, locNakayama, 2500),
		withTrials(g1("kikuka-sho", "Kikuka Sho", 43, turf, 3000, locKyoto, 2500, classic...), "Kobe Shimbun Hai", "St. Lite Kinen"),
		g1("tenno-sho-autumn", "Tenno Sho (Autumn)", 44, turf, 2000, locTokyo, 3000),
		g1("queen-elizabeth-cup", "Queen Elizabeth II Cup", 45, turf, 2200, locKyoto, 2000),
		g1("mile-championship", "Mile Championship", 46, turf, 1600, locKyoto, 2200),
		g1("japan-cup", "Japan Cup", 47, turf, 2400, locTokyo, 5000),
		g1("champions-cup", "Champions Cup", 49, dirt, 1800, locChukyo, 2000),
		g1("arima-kinen", "Arima Kinen", 51, turf, 2500, locNakayama, 5000, models.CategoryGrandPrix, models.CategorySeasonFinale),

		// G2
		graded(models.GradeG2, "kyoto-kinen", "Kyoto Kinen", 7, turf, 2200, locKyoto, 1100),
		graded(models.GradeG2, "yayoi-sho", "Yayoi Sho", 10, turf, 2000, locNakayama, 1000),
		graded(models.GradeG2, "hanshin-daishoten", "Hanshin Daishoten", 12, turf, 3000, locHanshin, 1300),
		graded(models.GradeG2, "aoba-sho", "Aoba Sho", 18, turf, 2400, locTokyo, 1000),
		graded(models.GradeG2, "st-lite-kinen", "St. Lite Kinen", 37, turf, 2200, locNakayama, 1000),
		graded(models.GradeG2, "kobe-shimbun-hai", "Kobe Shimbun Hai", 38, turf, 2400, locHanshin, 1000),
		graded(models.GradeG2, "mainichi-okan", "Mainichi Okan", 41, turf, 1800, locTokyo, 1300),
		graded(models.GradeG2, "kyoto-daishoten", "Kyoto Daishoten", 41, turf, 2400, locKyoto, 1300),
		graded(models.GradeG2, "copa-republica-argentina", "Copa Republica Argentina", 45, turf, 2500, locTokyo, 1200),
		graded(models.GradeG2, "stayers-stakes", "Stayers Stakes", 49, turf, 3600, locNakayama, 1200),

		// G3
		graded(models.GradeG3, "nakayama-kimpai", "Nakayama Kimpai", 1, turf, 2000, locNakayama, 800),
		graded(models.GradeG3, "kyoto-kimpai", "Kyoto Kimpai", 1, turf, 1600, locKyoto, 800),
		graded(models.GradeG3, "keisei-hai", "Keisei Hai", 2, turf, 2000, locNakayama, 700),
		graded(models.GradeG3, "silk-road-stakes", "Silk Road Stakes", 5, turf, 1200, locKyoto, 800),
		graded(models.GradeG3, "tokyo-shimbun-hai", "Tokyo Shimbun Hai", 6, turf, 1600, locTokyo, 800),
		graded(models.GradeG3, "radio-nikkei-sho", "Radio Nikkei Sho", 27, turf, 1800, locFukushima, 700),
		graded(models.GradeG3, "hakodate-kinen", "Hakodate Kinen", 28, turf, 2000, locHakodate, 900),
		graded(models.GradeG3, "sekiya-kinen", "Sekiya Kinen", 31, turf, 1600, locNiigata, 800),
		graded(models.GradeG3, "kokura-kinen", "Kokura Kinen", 32, turf, 2000, locKokura, 900),
		graded(models.GradeG3, "elm-stakes", "Elm Stakes", 32, dirt, 1700, locSapporo, 700),
		graded(models.GradeG3, "niigata-kinen", "Niigata Kinen", 35, turf, 2000, locNiigata, 800),
		graded(models.GradeG3, "musashino-stakes", "Musashino Stakes", 46, dirt, 1600, locTokyo, 800),
	}
}
