package service

import (
	"vidhub-go/internal/model"
	"vidhub-go/pkg/viewcount"
)

type sampleVideo struct {
	id, title, description, category, year, rating, duration, views string
}

func (s sampleVideo) toVideo() *model.Video {
	return &model.Video{
		ID:          s.id,
		Title:       s.title,
		Description: s.description,
		Thumbnail:   "https://picsum.photos/seed/" + s.id + "/640/360",
		URL:         "https://storage.googleapis.com/gtv-videos-bucket/sample/BigBuckBunny.mp4",
		Duration:    s.duration,
		Views:       model.ViewCount(viewcount.MustParse(s.views)),
		Category:    s.category,
		Year:        s.year,
		Rating:      s.rating,
		UploadDate:  s.year + "-01-15",
	}
}

var sampleVideos = []sampleVideo{
	{"trend-1", "Big Buck Bunny", "A giant rabbit takes on three bullying rodents.", "Animation", "2008", model.RatingG, "9:56", "1.2K"},
	{"trend-2", "Elephants Dream", "Two characters explore a surreal mechanical world.", "Animation", "2006", model.RatingPG, "10:53", "900"},
	{"trend-3", "Sintel", "A lonely girl searches for her lost baby dragon.", "Fantasy", "2010", model.RatingPG13, "14:48", "2.3M"},
	{"trend-4", "Tears of Steel", "Scientists try to save the world with a time machine.", "Science Fiction", "2012", model.RatingPG13, "12:14", "45K"},
	{"trend-5", "For Bigger Blazes", "Short promotional clip about streaming.", "Technology", "2015", model.RatingG, "0:15", "310"},
	{"trend-6", "Subaru Outback On Street And Dirt", "Road test of a family car on mixed terrain.", "Automotive", "2015", model.RatingG, "9:54", "7.8K"},
}
