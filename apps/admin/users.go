package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/jurnalspendapol-design/rubikon-mobile/core/user"
)

// seed makes sure the default counselor account exists.
func (cli *commandLine) seed() error {
	portal := cli.conf.Portal
	_, created, err := cli.usrSvc.EnsureUser(context.Background(), user.NewUser{
		Name:     portal.SeedCounselorName,
		Email:    portal.SeedCounselorEmail,
		Role:     user.RoleCounselor,
		Password: portal.SeedCounselorPassword,
	})
	if err != nil {
		return errors.Wrap(err, "seeding counselor")
	}
	if created {
		fmt.Fprintln(cli.out, "Counselor account created successfully!")
	} else {
		fmt.Fprintln(cli.out, "Counselor account already exists.")
	}
	return nil
}

func (cli *commandLine) listCounselors() error {
	usrs, err := cli.usrSvc.Search(context.Background(), user.QueryFilter{Role: user.RoleCounselor})
	if err != nil {
		return errors.Wrap(err, "listing counselors")
	}

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tCREATED")
	for _, usr := range usrs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", usr.ID, usr.Name, usr.Email, usr.CreatedAt.Format("2006-01-02"))
	}
	fmt.Fprintf(w, "\n%d counselor(s)\n", len(usrs))
	return w.Flush()
}

func (cli *commandLine) resetPassword(email, pwd string) error {
	return cli.usrSvc.ResetPassword(context.Background(), email, pwd)
}

func (cli *commandLine) importStudents(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening import file")
	}
	defer f.Close()

	rows, err := user.ParseCSV(f)
	if err != nil {
		return err
	}
	n, err := cli.usrSvc.Import(context.Background(), rows)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Berhasil mengimpor %d siswa!\n", n)
	return nil
}
