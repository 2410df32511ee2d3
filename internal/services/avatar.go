package services

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"image/color"
	"image/png"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"gorm.io/gorm"

	"github.com/six-app/six-backend/internal/logger"
	"github.com/six-app/six-backend/internal/repos"
	"github.com/six-app/six-backend/internal/types"
)

const avatarSize = 256

// AvatarService renders an initial-letter avatar for users who have not
// uploaded one, and stores it in the bucket.
type AvatarService interface {
	CreateAndUploadUserAvatar(ctx context.Context, tx *gorm.DB, user *types.User) error
	GenerateUserAvatar(user *types.User) (bytes.Buffer, error)
}

type avatarService struct {
	log           *logger.Logger
	userRepo      repos.UserRepo
	bucketService BucketService
	bgColors      []color.NRGBA
	fontFace      font.Face
}

func NewAvatarService(log *logger.Logger, userRepo repos.UserRepo, bucketService BucketService) (AvatarService, error) {
	serviceLog := log.With("service", "AvatarService")

	fontPath := os.Getenv("AVATAR_FONT_PATH")
	if fontPath == "" {
		fontPath = "./assets/fonts/Inter-Bold.ttf"
	}
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("failed reading avatar font %q: %w", fontPath, err)
	}
	parsed, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed parsing avatar font: %w", err)
	}
	face := truetype.NewFace(parsed, &truetype.Options{Size: avatarSize * 0.42})

	return &avatarService{
		log:           serviceLog,
		userRepo:      userRepo,
		bucketService: bucketService,
		bgColors: []color.NRGBA{
			{R: 0x5b, G: 0x8d, B: 0xef, A: 0xff},
			{R: 0xef, G: 0x5b, B: 0x7a, A: 0xff},
			{R: 0x43, G: 0xb5, B: 0x81, A: 0xff},
			{R: 0xf0, G: 0xa3, B: 0x3f, A: 0xff},
			{R: 0x8e, G: 0x6c, B: 0xe8, A: 0xff},
			{R: 0x2e, G: 0xa8, B: 0xc9, A: 0xff},
		},
		fontFace: face,
	}, nil
}

func (avs *avatarService) CreateAndUploadUserAvatar(ctx context.Context, tx *gorm.DB, user *types.User) error {
	avs.log.Info("Starting CreateAndUploadUserAvatar now...", "userID", user.ID)

	buf, err := avs.GenerateUserAvatar(user)
	if err != nil {
		avs.log.Warn("Failed to generate user avatar", "error", err)
		return fmt.Errorf("failed to generate user avatar: %w", err)
	}

	objectKey := fmt.Sprintf("avatars/user/%s.png", user.ID)
	url, err := avs.bucketService.Upload(ctx, objectKey, "image/png", &buf)
	if err != nil {
		avs.log.Warn("Failed to upload user avatar", "error", err)
		return fmt.Errorf("failed to upload user avatar: %w", err)
	}

	user.AvatarBucketKey = objectKey
	user.AvatarURL = url
	if _, err := avs.userRepo.Update(ctx, tx, []*types.User{user}); err != nil {
		avs.log.Warn("Failed to save avatar fields on user", "error", err)
		return fmt.Errorf("failed to save avatar fields on user: %w", err)
	}
	avs.log.Info("Successfully created and uploaded user avatar :)", "userID", user.ID, "url", url)
	return nil
}

func (avs *avatarService) GenerateUserAvatar(user *types.User) (bytes.Buffer, error) {
	var buf bytes.Buffer

	initial := avatarInitial(user)
	bg := avs.bgColors[colorIndex(user.Email, len(avs.bgColors))]

	dc := gg.NewContext(avatarSize, avatarSize)
	dc.SetColor(bg)
	dc.DrawCircle(avatarSize/2, avatarSize/2, avatarSize/2)
	dc.Fill()

	dc.SetFontFace(avs.fontFace)
	dc.SetColor(color.White)
	dc.DrawStringAnchored(initial, avatarSize/2, avatarSize/2, 0.5, 0.45)

	// Downscale from the render size for smoother edges.
	img := imaging.Resize(dc.Image(), avatarSize/2, avatarSize/2, imaging.Lanczos)
	if err := png.Encode(&buf, img); err != nil {
		return buf, fmt.Errorf("failed encoding avatar png: %w", err)
	}
	return buf, nil
}

func avatarInitial(user *types.User) string {
	name := strings.TrimSpace(user.DisplayName)
	if name == "" {
		name = strings.TrimSpace(user.Email)
	}
	if name == "" {
		return "?"
	}
	return strings.ToUpper(string([]rune(name)[0]))
}

func colorIndex(seed string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(seed))
	return int(h.Sum32() % uint32(n))
}
