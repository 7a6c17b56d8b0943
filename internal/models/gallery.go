package models

// GalleryPhoto is one media item of a guest gallery
type GalleryPhoto struct {
	ID          string `json:"_id"`
	URL         string `json:"url"`
	IsGeneral   bool   `json:"isGeneral"`
	IsConfirmed bool   `json:"isConfirmed"`
}

func (p *GalleryPhoto) Validate() error {
	if p.ID == "" {
		return malformed("galleryFiles.items", "_id")
	}
	if p.URL == "" {
		return malformed("galleryFiles.items", "url")
	}
	return nil
}

// GalleryPage is one page of galleryFiles as reported by the API.
// Limit and Page echo the effective values the server applied.
type GalleryPage struct {
	Items []GalleryPhoto `json:"items"`
	Limit int            `json:"limit"`
	Page  int            `json:"page"`
}

func (p *GalleryPage) Validate() error {
	for i := range p.Items {
		if err := p.Items[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
