package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"vidhub-go/internal/api/dto"
	"vidhub-go/internal/config"
	"vidhub-go/internal/errs"
)

func TestPlaylistLifecycle(t *testing.T) {
	env := newTestEnv(t)
	env.video(t, "v1")
	env.video(t, "v2")
	ctx := context.Background()

	p, err := env.playlistSvc.Create(ctx, 1, &dto.PlaylistCreateRequest{Name: "  Favourites "})
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Favourites" {
		t.Fatalf("name = %q", p.Name)
	}
	if _, err := env.playlistSvc.Create(ctx, 1, &dto.PlaylistCreateRequest{Name: "Favourites"}); !errors.Is(err, ErrPlaylistNameTaken) {
		t.Fatalf("duplicate err = %v", err)
	}

	if _, err := env.playlistSvc.AddVideo(ctx, 1, p.ID, "v2"); err != nil {
		t.Fatal(err)
	}
	if _, err := env.playlistSvc.AddVideo(ctx, 1, p.ID, "v1"); err != nil {
		t.Fatal(err)
	}
	if _, err := env.playlistSvc.AddVideo(ctx, 1, p.ID, "v1"); !errors.Is(err, ErrVideoAlreadyInPlaylist) {
		t.Fatalf("re-add err = %v", err)
	}
	if _, err := env.playlistSvc.AddVideo(ctx, 1, p.ID, "ghost"); !errors.Is(err, ErrVideoNotFound) {
		t.Fatalf("missing video err = %v", err)
	}

	full, err := env.playlistSvc.Get(ctx, 1, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(full.Items) != 2 || full.Items[0].ID != "v2" || full.Items[1].ID != "v1" {
		t.Fatalf("items out of insertion order: %+v", full.Items)
	}

	if _, err := env.playlistSvc.RemoveVideo(ctx, 1, p.ID, "v2"); err != nil {
		t.Fatal(err)
	}
	if _, err := env.playlistSvc.RemoveVideo(ctx, 1, p.ID, "v2"); !errors.Is(err, ErrVideoNotInPlaylist) {
		t.Fatalf("second remove err = %v", err)
	}

	if err := env.playlistSvc.Delete(ctx, 1, p.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := env.playlistSvc.Get(ctx, 1, p.ID); !errors.Is(err, ErrPlaylistNotFound) {
		t.Fatalf("after delete err = %v", err)
	}
}

func TestPlaylistOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p, _ := env.playlistSvc.Create(ctx, 1, &dto.PlaylistCreateRequest{Name: "mine"})

	if _, err := env.playlistSvc.Get(ctx, 2, p.ID); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("err = %v", err)
	}
	if err := env.playlistSvc.Delete(ctx, 2, p.ID); !errors.Is(err, ErrPlaylistNoPermission) {
		t.Fatalf("err = %v", err)
	}
}

func TestPlaylistNameValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, name := range []string{"", "   ", strings.Repeat("n", 101)} {
		if _, err := env.playlistSvc.Create(ctx, 1, &dto.PlaylistCreateRequest{Name: name}); !errors.Is(err, ErrPlaylistNameInvalid) {
			t.Fatalf("name %q err = %v", name, err)
		}
	}

	a, _ := env.playlistSvc.Create(ctx, 1, &dto.PlaylistCreateRequest{Name: "a"})
	_, _ = env.playlistSvc.Create(ctx, 1, &dto.PlaylistCreateRequest{Name: "b"})
	rename := "b"
	if _, err := env.playlistSvc.Update(ctx, 1, a.ID, &dto.PlaylistUpdateRequest{Name: &rename}); !errors.Is(err, ErrPlaylistNameTaken) {
		t.Fatalf("rename err = %v", err)
	}
}

func TestSubscriptions(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSubscriptionService(env.subs, env.users)
	ctx := context.Background()
	u1 := env.user(t, "u1@example.com")
	u2 := env.user(t, "u2@example.com")

	if _, err := svc.Subscribe(ctx, u1, u1); !errors.Is(err, ErrCannotSubscribeSelf) {
		t.Fatalf("self err = %v", err)
	}
	if _, err := svc.Subscribe(ctx, u1, 999); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("missing channel err = %v", err)
	}
	status, err := svc.Subscribe(ctx, u1, u2)
	if err != nil || !status.Subscribed || status.Subscribers != 1 {
		t.Fatalf("subscribe = %+v, %v", status, err)
	}
	if _, err := svc.Subscribe(ctx, u1, u2); !errors.Is(err, ErrAlreadySubscribed) {
		t.Fatalf("duplicate err = %v", err)
	}

	list, err := svc.List(ctx, u1, 1, 10)
	if err != nil || len(list.Channels) != 1 || list.Channels[0].Email != "u2@example.com" {
		t.Fatalf("list = %+v, %v", list, err)
	}

	if _, err := svc.Unsubscribe(ctx, u1, u2); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Unsubscribe(ctx, u1, u2); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Fatalf("second unsubscribe err = %v", err)
	}
}

func TestAuthRegisterAndLogin(t *testing.T) {
	config.Set(&config.Config{
		App: config.AppConfig{Name: "vidhub-test"},
		JWT: config.JWTConfig{Secret: "test", ExpireHours: 1},
	})
	env := newTestEnv(t)
	svc := NewAuthService(env.users)
	ctx := context.Background()

	user, err := svc.Register(ctx, &dto.RegisterRequest{Email: "U1@Example.com", Password: "secret1"})
	if err != nil {
		t.Fatal(err)
	}
	if user.Email != "u1@example.com" {
		t.Fatalf("email not normalised: %q", user.Email)
	}
	if _, err := svc.Register(ctx, &dto.RegisterRequest{Email: "u1@example.com", Password: "secret1"}); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("duplicate err = %v", err)
	}

	if _, err := svc.Login(ctx, &dto.LoginRequest{Email: "u1@example.com", Password: "wrong!"}); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("bad password err = %v", err)
	}
	tok, err := svc.Login(ctx, &dto.LoginRequest{Email: "u1@example.com", Password: "secret1"})
	if err != nil || tok.Token == "" || tok.ExpiresIn != 3600 {
		t.Fatalf("login = %+v, %v", tok, err)
	}
}

func TestSetAdmin(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.users)
	ctx := context.Background()
	admin := env.user(t, "admin@example.com")
	u := env.user(t, "u@example.com")

	if _, err := svc.SetAdmin(ctx, admin, admin, false); !errors.Is(err, ErrCannotDemoteYourself) {
		t.Fatalf("self demote err = %v", err)
	}
	info, err := svc.SetAdmin(ctx, admin, u, true)
	if err != nil || !info.IsAdmin {
		t.Fatalf("promote = %+v, %v", info, err)
	}
	if _, err := svc.SetAdmin(ctx, admin, 404, true); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("missing user err = %v", err)
	}
}
