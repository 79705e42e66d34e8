package libraryv1

import (
	"testing"
	"time"
)

func TestCodecWireNames(t *testing.T) {
	begin := time.Date(2021, 3, 30, 8, 0, 0, 0, time.UTC)
	data, err := Codec{}.Marshal(&Book{
		Id:      1,
		Title:   "Rok 1984",
		Status:  StatusRented,
		Rentals: []*Rental{{Id: 2, BookId: 1, BeginTime: begin}},
	})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	want := `{"id":1,"isbn":"","title":"Rok 1984","author":"","status":"Rented","rental_open":false,"rentals":[{"id":2,"book_id":1,"begin_time":"2021-03-30T08:00:00Z"}]}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}
}

func TestCodecEmptyBody(t *testing.T) {
	var req GetBookRequest
	if err := (Codec{}).Unmarshal(nil, &req); err != nil {
		t.Fatalf("Unmarshal of empty body failed: %v", err)
	}
	if req.BookId != 0 {
		t.Errorf("BookId = %d, want 0", req.BookId)
	}
}
