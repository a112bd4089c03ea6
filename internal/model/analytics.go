package model

// HeatmapDay is one calendar cell of the activity heatmap.
type HeatmapDay struct {
	Date     string `json:"date"`
	Duration int64  `json:"duration"`
	Level    int    `json:"level"` // 0-4
}

// DayTotal is the tracked duration for one calendar day.
type DayTotal struct {
	Date     string `json:"date"`
	Duration int64  `json:"duration"`
}

// Stats summarizes recent tracked time.
type Stats struct {
	MostProductiveDay DayTotal `json:"mostProductiveDay"`
	TodayTotal        int64    `json:"todayTotal"`
	WeekTotal         int64    `json:"weekTotal"`
	MonthTotal        int64    `json:"monthTotal"`
	Streak            int      `json:"streak"`
}

// CategoryShare is one slice of the category distribution.
type CategoryShare struct {
	CategoryID   string  `json:"categoryId"`
	CategoryName string  `json:"categoryName"`
	Color        string  `json:"color"`
	Duration     int64   `json:"duration"`
	Percentage   float64 `json:"percentage"`
}

// RatingLevel is the medal awarded for a day's task completion.
type RatingLevel string

// Rating levels, lowest first.
const (
	RatingNone     RatingLevel = "None"
	RatingBronze   RatingLevel = "Bronze"
	RatingSilver   RatingLevel = "Silver"
	RatingGold     RatingLevel = "Gold"
	RatingPlatinum RatingLevel = "Platinum"
)

// DayRating scores task completion for one scheduled day.
type DayRating struct {
	Level          RatingLevel `json:"level"`
	Message        string      `json:"message"`
	Score          int         `json:"score"`
	TotalTasks     int         `json:"totalTasks"`
	CompletedTasks int         `json:"completedTasks"`
}
