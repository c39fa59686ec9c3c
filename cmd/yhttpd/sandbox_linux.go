//go:build linux

package main

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// ErrRootOwnedTarget is returned when the directory to serve is owned
// by root; serving a root-owned tree after dropping privileges would
// defeat the purpose of dropping them.
var ErrRootOwnedTarget = errors.New("yhttpd: refusing to serve a root-owned directory")

// sandbox chroots into dir and drops root privileges to the directory
// owner's uid/gid, mirroring the historical demo's privilege-dropping
// shape. It is a best-effort step: a non-root invocation (the common
// case in development) skips chroot and
// setuid/setgid entirely rather than failing, since an unprivileged
// process cannot perform either.
func sandbox(dir string, logger *zap.Logger) error {
	if unix.Geteuid() != 0 {
		logger.Info("not running as root, skipping chroot and privilege drop")
		return nil
	}

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat target directory: %w", err)
	}
	stat, ok := info.Sys().(*unix.Stat_t)
	if !ok {
		return fmt.Errorf("yhttpd: cannot read owner of %s", dir)
	}
	if stat.Uid == 0 {
		return ErrRootOwnedTarget
	}

	u, err := user.LookupId(strconv.FormatUint(uint64(stat.Uid), 10))
	if err != nil {
		return fmt.Errorf("lookup directory owner: %w", err)
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return fmt.Errorf("parse owner gid: %w", err)
	}
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return fmt.Errorf("parse owner uid: %w", err)
	}

	if err := unix.Chroot(dir); err != nil {
		return fmt.Errorf("chroot: %w", err)
	}
	if err := unix.Chdir("/"); err != nil {
		return fmt.Errorf("chdir after chroot: %w", err)
	}
	if err := unix.Setgroups([]int{gid}); err != nil {
		return fmt.Errorf("setgroups: %w", err)
	}
	if err := unix.Setresgid(gid, gid, gid); err != nil {
		return fmt.Errorf("setresgid: %w", err)
	}
	if err := unix.Setresuid(uid, uid, uid); err != nil {
		return fmt.Errorf("setresuid: %w", err)
	}

	logger.Info("chrooted and dropped privileges", zap.Int("uid", uid), zap.Int("gid", gid))
	return nil
}
