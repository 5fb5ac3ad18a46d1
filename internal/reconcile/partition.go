package reconcile

import "github.com/portfolio-content-api/internal/models"

// Partition splits artworks by review status
type Partition struct {
	Approved []models.Artwork `json:"approved"`
	Pending  []models.Artwork `json:"pending"`
}

// PartitionArtworks places every artwork in exactly one partition. Unknown or
// missing statuses are normalized to approved before placement.
func PartitionArtworks(artworks []models.Artwork) Partition {
	p := Partition{
		Approved: []models.Artwork{},
		Pending:  []models.Artwork{},
	}
	for _, a := range artworks {
		p = p.Put(a)
	}
	return p
}

// Put inserts or moves a into the partition matching its status,
// removing any copy with the same id from the other partition
func (p Partition) Put(a models.Artwork) Partition {
	a.Status = models.NormalizeStatus(a.Status)
	if a.Status == models.StatusPending {
		return Partition{
			Approved: Remove(p.Approved, a.ID),
			Pending:  Upsert(p.Pending, a),
		}
	}
	return Partition{
		Approved: Upsert(p.Approved, a),
		Pending:  Remove(p.Pending, a.ID),
	}
}

// Remove drops id from both partitions
func (p Partition) Remove(id string) Partition {
	return Partition{
		Approved: Remove(p.Approved, id),
		Pending:  Remove(p.Pending, id),
	}
}

// All returns approved followed by pending
func (p Partition) All() []models.Artwork {
	out := make([]models.Artwork, 0, len(p.Approved)+len(p.Pending))
	out = append(out, p.Approved...)
	return append(out, p.Pending...)
}
