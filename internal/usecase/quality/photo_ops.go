package quality

import (
	"context"

	domainquality "pqms/internal/domain/quality"
	"pqms/internal/errs"
)

type PhotoPayload struct {
	ItemResultID Optional[uint64] `json:"item_result_id"`
	Image        Optional[string] `json:"image"`
	Annotation   Optional[string] `json:"annotation"`
}

type photoFields struct {
	ItemResultID uint64 `json:"item_result_id" validate:"required"`
	Image        string `json:"image" validate:"required"`
	Annotation   string `json:"annotation"`
}

func (p PhotoPayload) applyTo(f *photoFields) {
	p.ItemResultID.assign(&f.ItemResultID)
	p.Image.assign(&f.Image)
	p.Annotation.assign(&f.Annotation)
}

func (s *Service) CreatePhoto(ctx context.Context, p PhotoPayload) (ExecutionPhotoView, error) {
	if err := checkContext(ctx); err != nil {
		return ExecutionPhotoView{}, err
	}

	var created domainquality.ExecutionPhoto
	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		var f photoFields
		p.applyTo(&f)
		photo, err := s.photoFromFields(txCtx, f)
		if err != nil {
			return err
		}
		created, err = s.executions.CreatePhoto(txCtx, photo)
		return err
	})
	if err != nil {
		return ExecutionPhotoView{}, err
	}
	return s.photoView(created), nil
}

func (s *Service) GetPhoto(ctx context.Context, id uint64) (ExecutionPhotoView, error) {
	if err := checkContext(ctx); err != nil {
		return ExecutionPhotoView{}, err
	}

	photo, err := s.executions.GetPhoto(ctx, id)
	if err != nil {
		return ExecutionPhotoView{}, err
	}
	return s.photoView(photo), nil
}

// ListPhotos lists photos in insertion order, optionally for one item result.
func (s *Service) ListPhotos(ctx context.Context, itemResultID *uint64) ([]ExecutionPhotoView, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	photos, err := s.executions.ListPhotos(ctx, itemResultID)
	if err != nil {
		return nil, err
	}
	out := make([]ExecutionPhotoView, 0, len(photos))
	for _, photo := range photos {
		out = append(out, s.photoView(photo))
	}
	return out, nil
}

func (s *Service) UpdatePhoto(ctx context.Context, id uint64, p PhotoPayload, partial bool) (ExecutionPhotoView, error) {
	if err := checkContext(ctx); err != nil {
		return ExecutionPhotoView{}, err
	}
	if !partial && !p.Image.Set {
		return ExecutionPhotoView{}, requiredField("image")
	}

	var updated domainquality.ExecutionPhoto
	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.executions.GetPhoto(txCtx, id)
		if err != nil {
			return err
		}
		f := photoFields{ItemResultID: current.ItemResultID, Image: current.Image, Annotation: current.Annotation}
		p.applyTo(&f)
		photo, err := s.photoFromFields(txCtx, f)
		if err != nil {
			return err
		}
		photo.ID = id
		updated, err = s.executions.UpdatePhoto(txCtx, photo)
		return err
	})
	if err != nil {
		return ExecutionPhotoView{}, err
	}
	return s.photoView(updated), nil
}

func (s *Service) DeletePhoto(ctx context.Context, id uint64) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	return s.executions.DeletePhoto(ctx, id)
}

func (s *Service) photoFromFields(ctx context.Context, f photoFields) (domainquality.ExecutionPhoto, error) {
	if err := s.check(f, ""); err != nil {
		return domainquality.ExecutionPhoto{}, err
	}
	if _, err := s.executions.GetResult(ctx, f.ItemResultID); err != nil {
		if errs.KindOf(err) == errs.KindNotFound {
			return domainquality.ExecutionPhoto{}, errs.Validationf("item_result_id", "execution item result %d does not exist", f.ItemResultID)
		}
		return domainquality.ExecutionPhoto{}, err
	}
	return domainquality.ExecutionPhoto{
		ItemResultID: f.ItemResultID,
		Image:        f.Image,
		Annotation:   f.Annotation,
	}, nil
}

func (s *Service) photoView(p domainquality.ExecutionPhoto) ExecutionPhotoView {
	return ExecutionPhotoView{
		ID:           p.ID,
		ItemResultID: p.ItemResultID,
		Image:        p.Image,
		URL:          s.photoURL(p.Image),
		Annotation:   p.Annotation,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
